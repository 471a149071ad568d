package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gusamyky/ftpfs/pkg/store"
	"github.com/gusamyky/ftpfs/pkg/store/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users (add, delete, list, passwd)",
	Long: `Manage user accounts in the ftpfs database.

Accounts created here can log in over the protocol and the admin API.

Examples:
  # Add a user (prompts for password)
  ftpfs user add alice

  # Add an admin user
  ftpfs user add alice --role admin

  # Change a password
  ftpfs user passwd alice

  # List all users
  ftpfs user list

  # Delete a user
  ftpfs user delete alice`,
}

var userAddRole string

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete <username>",
	Aliases: []string{"remove"},
	Short:   "Delete a user",
	Args:    cobra.ExactArgs(1),
	RunE:    runUserDelete,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userPasswdCmd = &cobra.Command{
	Use:     "passwd <username>",
	Aliases: []string{"password"},
	Short:   "Change a user's password",
	Args:    cobra.ExactArgs(1),
	RunE:    runUserPasswd,
}

func init() {
	userAddCmd.Flags().StringVar(&userAddRole, "role", models.RoleUser, "User role (user or admin)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userPasswdCmd)
}

// openStore loads the configuration and opens the database.
// The caller must Close the returned store.
func openStore() (*store.GORMStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	if userAddRole != models.RoleUser && userAddRole != models.RoleAdmin {
		return fmt.Errorf("invalid role %q: must be %q or %q", userAddRole, models.RoleUser, models.RoleAdmin)
	}

	password, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := models.ValidatePassword(password); err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         userAddRole,
	}
	if _, err := st.CreateUser(context.Background(), user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			return fmt.Errorf("user %q already exists", username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User %q created with role %q\n", username, userAddRole)
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteUser(context.Background(), username); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User %q deleted\n", username)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users registered")
		return nil
	}

	fmt.Printf("%-20s %-8s %-20s %s\n", "USERNAME", "ROLE", "CREATED", "LAST LOGIN")
	fmt.Println(strings.Repeat("-", 70))
	for _, u := range users {
		lastLogin := "-"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format(time.DateTime)
		}
		fmt.Printf("%-20s %-8s %-20s %s\n", u.Username, u.Role, u.CreatedAt.Format(time.DateTime), lastLogin)
	}

	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if _, err := st.GetUserByUsername(ctx, username); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	password, err := promptPassword(fmt.Sprintf("New password for %s: ", username))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := models.ValidatePassword(password); err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := st.UpdatePassword(ctx, username, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password updated for %q\n", username)
	return nil
}

// promptPassword prompts for a password without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	// Fall back to reading from stdin (for piped input)
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
