package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"clouddrive/browser"
	"clouddrive/clients"
	"clouddrive/creds"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "clouddrive",
		Short: "Command-line browser for the cloud drive service",
		Long: `clouddrive is a CLI client for a hierarchical cloud-storage service.

It lets you sign in, browse nested folders, upload files (optionally
unpacking archives server-side), create folders, rename and delete entries,
and inspect or restore prior versions of a file.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clouddrive.yaml)")
	rootCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:8000/api/v1", "Base URL of the drive API")
	rootCmd.PersistentFlags().String("token-file", "", "Path of the stored credential (default is in the user config dir)")
	rootCmd.PersistentFlags().StringP("downloads-dir", "d", ".", "Directory downloads are saved into")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	// Bind flags to viper
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server-url"))
	viper.BindPFlag("token_file", rootCmd.PersistentFlags().Lookup("token-file"))
	viper.BindPFlag("downloads_dir", rootCmd.PersistentFlags().Lookup("downloads-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Bind environment variables
	viper.BindEnv("server.url", "CLOUDDRIVE_SERVER_URL")
	viper.BindEnv("token_file", "CLOUDDRIVE_TOKEN_FILE")
	viper.BindEnv("downloads_dir", "CLOUDDRIVE_DOWNLOADS_DIR")

	loginCmd.Flags().StringP("email", "e", "", "Account email address")
	loginCmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringP("name", "n", "", "Display name")
	registerCmd.Flags().StringP("email", "e", "", "Account email address")
	registerCmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, browseCmd)
}

func initConfig() {
	if cfgFile != "" {
		// Use specified config file
		viper.SetConfigFile(cfgFile)
	} else {
		// Look for config in home directory with name ".clouddrive" (without extension)
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".clouddrive")
	}

	viper.AutomaticEnv() // read environment variables

	// If config file is found, read it
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	return logger
}

func newStore() *creds.Store {
	path := viper.GetString("token_file")
	if path == "" {
		var err error
		path, err = creds.DefaultPath()
		if err != nil {
			log.Fatalf("❌ Failed to resolve credential path: %v", err)
		}
	}
	return creds.NewStore(path)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session credential",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = promptLine("Email: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}
		if email == "" || password == "" {
			log.Fatal("❌ Email and password are required")
		}

		store := newStore()
		auth := clients.NewAuthClient(viper.GetString("server.url"), store)

		token, err := auth.Login(ctx, email, password)
		if err != nil {
			log.Fatalf("❌ Login failed: %v", err)
		}
		if err := store.Save(token); err != nil {
			log.Fatalf("❌ Failed to store credential: %v", err)
		}

		fmt.Println("✅ Signed in")
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if name == "" {
			name = promptLine("Display name: ")
		}
		if email == "" {
			email = promptLine("Email: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}
		if name == "" || email == "" || password == "" {
			log.Fatal("❌ Display name, email and password are required")
		}

		auth := clients.NewAuthClient(viper.GetString("server.url"), nil)
		if err := auth.Register(ctx, name, email, password); err != nil {
			log.Fatalf("❌ Registration failed: %v", err)
		}

		fmt.Println("✅ Account created, you can now log in")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke all sessions and forget the stored credential",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if !newStdinConfirmer().Confirm("Log out of all sessions?") {
			return
		}

		store := newStore()
		auth := clients.NewAuthClient(viper.GetString("server.url"), store)

		// Best-effort: the local credential is cleared even when the remote
		// revocation fails.
		if err := auth.LogoutAll(ctx); err != nil {
			log.Printf("⚠️  Remote logout failed: %v", err)
		}
		if err := store.Clear(); err != nil {
			log.Fatalf("❌ Failed to clear credential: %v", err)
		}

		fmt.Println("✅ Logged out")
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the drive interactively",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store := newStore()
		if !store.Authenticated() {
			log.Fatal("❌ Not signed in (or the session expired), run 'clouddrive login' first")
		}

		logger := newLogger()
		defer logger.Sync()

		drive := clients.NewDriveClient(viper.GetString("server.url"), store)
		session := browser.NewSession(&browser.Dependencies{
			Drive:    drive,
			Confirm:  newStdinConfirmer(),
			Delivery: &dirDelivery{dir: viper.GetString("downloads_dir")},
			Logger:   logger,
		})

		if err := runShell(ctx, session); err != nil {
			log.Fatalf("❌ %v", err)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
