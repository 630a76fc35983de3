// Package docs exposes "docs sync", which copies agent guidance documents from the template repository root into a GitHub repository.
package docs
