// Command optchat is an option-driven support chat for the terminal.
package main

import "github.com/diogo/optchat/internal/commands"

func main() {
	commands.Execute()
}
