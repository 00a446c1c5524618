package main

import "fmt"

// ANSI color constants for update output (no lipgloss — runs outside TUI).
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiItalic = "\033[3m"
	ansiAmber  = "\033[38;2;251;191;36m"  // #fbbf24
	ansiOrange = "\033[38;2;245;158;11m"  // #f59e0b
	ansiSlate  = "\033[38;2;136;144;160m" // #8890a0
)

// printUpdateLogo prints the spaced PARKWATCH wordmark in alternating amber.
func printUpdateLogo() {
	letters := "PARKWATCH"
	colors := [2]string{ansiAmber, ansiOrange}
	fmt.Print("\n  ")
	for i, ch := range letters {
		fmt.Printf("%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// printUpdateSuccess prints the update-complete message.
func printUpdateSuccess(oldVersion, newVersion string) {
	printUpdateLogo()
	fmt.Printf("\n  %s%s%s  %s%s→%s  %s%s%s%s\n",
		ansiSlate, oldVersion, ansiReset,
		ansiAmber, ansiBold, ansiReset,
		ansiAmber, ansiBold, newVersion, ansiReset,
	)
	fmt.Printf("\n  %s│%s %s%sTHE ATTENDANT%s\n", ansiOrange, ansiReset, ansiOrange, ansiBold, ansiReset)
	fmt.Printf("  %s│%s %s%sFresh paint on the old booth.%s\n\n", ansiOrange, ansiReset, ansiAmber, ansiItalic, ansiReset)
}

// printAlreadyCurrent prints the already-up-to-date message.
func printAlreadyCurrent(currentVersion string) {
	printUpdateLogo()
	fmt.Printf("\n  %s%s%s%s  %s%s✦%s  %s%scurrent%s\n",
		ansiAmber, ansiBold, currentVersion, ansiReset,
		ansiOrange, ansiBold, ansiReset,
		ansiSlate, ansiItalic, ansiReset,
	)
	fmt.Printf("\n  %s│%s %s%sTHE ATTENDANT%s\n", ansiOrange, ansiReset, ansiOrange, ansiBold, ansiReset)
	fmt.Printf("  %s│%s %s%sNothing to change. Carry on.%s\n\n", ansiOrange, ansiReset, ansiAmber, ansiItalic, ansiReset)
}
