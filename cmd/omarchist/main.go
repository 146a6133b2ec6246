// Command omarchist manages application settings and Waybar profiles for an
// Omarchy desktop.
package main

func main() {
	Execute()
}
