// Package main provides the gcodetag CLI for embedding and recovering
// slicer settings in G-code files.
package main

func main() {
	Execute()
}
