// Package ui narrates gh invocations as numbered progress steps when the CLI logs in console format.
package ui
