package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"redditsave/pkg/auth"
	"redditsave/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored reddit credentials",
	Long: `Manage the reddit account and script app credentials used by archive runs.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

Values set in the config file or environment take precedence over stored ones.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store reddit credentials securely",
	Long: `Store a reddit username, password, client id and secret in the system
keychain or the encrypted credentials file.`,
	Example: `  # Interactive login
  redditsave auth login

  # Login with username
  redditsave auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout USERNAME",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts with secrets masked",
	RunE:  runList,
}

// guideCmd represents the auth guide command
var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to create the reddit script app",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowAppGuide(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(guideCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	account := &auth.Account{}
	if len(args) > 0 {
		account.Username = args[0]
	}

	fmt.Println("Create a script app first if you have none: redditsave auth guide")
	fmt.Println()

	if account.Username == "" {
		if account.Username, err = prompt(reader, "Reddit username: "); err != nil {
			return err
		}
	}
	fmt.Print("Reddit password: ")
	if account.Password, err = readPassword(reader); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if account.ClientID, err = prompt(reader, "App client id: "); err != nil {
		return err
	}
	fmt.Print("App secret: ")
	if account.Secret, err = readPassword(reader); err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}

	if err := manager.Store(account); err != nil {
		return err
	}

	ui.PrintSuccess("Credentials stored for " + account.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}

	ui.PrintSuccess("Credentials removed for " + args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts := manager.List()
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts. Run 'redditsave auth login' to add one.")
		return nil
	}

	for i, account := range accounts {
		safe := auth.SanitizeAccount(account)
		label := safe.Username
		if i == 0 {
			label += " (default)"
		}
		ui.PrintHighlight(label)
		ui.PrintInfo("  Client ID", safe.ClientID)
		ui.PrintInfo("  Secret", safe.Secret)
		ui.PrintInfo("  Updated", safe.LastModified.Local().Format(time.DateTime))
	}
	return nil
}

// prompt reads one trimmed line, failing on empty input
func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(label, ": "))
	}
	return input, nil
}

// readPassword reads a secret from stdin without echoing when stdin is a
// terminal
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
