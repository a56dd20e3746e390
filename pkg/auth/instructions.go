package auth

import (
	"fmt"
	"io"
	"strings"
)

// AppsURL is where reddit users register API applications
const AppsURL = "https://www.reddit.com/prefs/apps"

// ShowAppGuide writes step-by-step instructions for creating the reddit
// script app whose id and secret the archiver authenticates with
func ShowAppGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "REDDIT API APP SETUP")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Saved and upvoted listings are private, so the archiver logs in as you")
	fmt.Fprintln(w, "through a personal \"script\" app.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 1: Open "+AppsURL+" while logged in")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 2: Click 'create another app...' at the bottom")
	fmt.Fprintln(w, "   - name: anything, e.g. redditsave")
	fmt.Fprintln(w, "   - type: script")
	fmt.Fprintln(w, "   - redirect uri: http://localhost:8080 (unused but required)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 3: Copy the two values reddit shows for the app")
	fmt.Fprintln(w, "   - client id: the short string under 'personal use script'")
	fmt.Fprintln(w, "   - secret:    the string next to 'secret'")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "NOTES:")
	fmt.Fprintln(w, "   - Accounts with two-factor authentication cannot use password login")
	fmt.Fprintln(w, "   - The secret and your password grant full access to the account")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
}
