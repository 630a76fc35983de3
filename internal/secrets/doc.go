// Package secrets uploads .env entries to a repository as encrypted GitHub Actions secrets.
package secrets
