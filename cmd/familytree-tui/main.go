package main

import (
	"flag"
	"fmt"
	"os"

	"familytree/internal/client"
	"familytree/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "familytree-server base URL")
	family := flag.Int64("family", 1, "family id to open first")
	flag.Parse()

	m := tui.NewModel(client.New(*server), *family)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "familytree-tui:", err)
		os.Exit(1)
	}
}
