// Package platform hides the differences between Unix and Windows file
// permission handling.
package platform
