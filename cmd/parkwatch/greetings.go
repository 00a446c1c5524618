package main

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
)

var attendantGreetings = [...]string{
	"Somewhere out there, a parking meter is counting down. Not for you, apparently.",
	"No session, no tickets, no warnings before they expire. Bold strategy.",
	"The tow truck doesn't check whether you meant to renew.",
	"Your windshield has room for one more fine. Sign in and keep it empty.",
	"Meters don't forgive. I do, but only until the timer hits zero.",
	"A ticket you don't track is a fine you haven't met yet.",
	"I watch the clock so you don't have to. But first you have to let me in.",
	"Every minute past expiry costs more than the minute before it.",
	"The enforcement officer is very punctual. Are you?",
	"Paper tickets fade in the sun. Fines don't.",
	"You parked. You paid. You forgot. Two out of three is how fines happen.",
	"Sign in, add your ticket, and go enjoy wherever you parked to get to.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("P A R K W A T C H")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Never let a parking ticket expire unnoticed.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"parkwatch", "Open the ticket board (interactive TUI)"},
		{"parkwatch register", "Create an account"},
		{"parkwatch login", "Sign in with email and password"},
		{"parkwatch logout", "Clear your session"},
		{"parkwatch update", "Check for updates"},
		{"parkwatch --version", "Show version"},
		{"parkwatch help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	url := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("https://parkwatch.app")
	fmt.Printf("\n  %s\n\n", url)
}

func printGreeting() {
	msg := attendantGreetings[rand.Intn(len(attendantGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("PARKWATCH")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Render("— The Attendant")

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To get started: parkwatch login")

	fmt.Printf("\n%s\n\n%s\n%s\n\n%s\n\n", title, quote, attrib, hint)
}
