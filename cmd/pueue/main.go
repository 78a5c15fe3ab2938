// Command pueue is the control socket CLI for the pueue-go daemon: its
// subcommands dial the daemon's Unix socket via pkg/client and print its
// reply, except daemon (runs the daemon in-process) and format-status
// (works on task JSON offline).
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pueued/pueue-go/pkg/client"
)

// connError marks a failure to reach the daemon at all, as opposed to
// the daemon rejecting a well-formed request. The CLI reports the two
// with different exit codes.
type connError struct{ err error }

func (e *connError) Error() string { return e.err.Error() }
func (e *connError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "pueue",
	Short: "Command line interface for the pueue-go daemon",
}

func init() {
	home, _ := os.UserHomeDir()
	defaultSocket := filepath.Join(home, ".local", "share", "pueue-go", "daemon.socket")

	rootCmd.PersistentFlags().String("socket", defaultSocket, "path to the daemon's control socket")
	rootCmd.PersistentFlags().String("secret", "", "preshared secret, if the daemon requires a handshake")
	rootCmd.PersistentFlags().Duration("dial-timeout", 5*time.Second, "socket connect timeout")
	rootCmd.PersistentFlags().StringP("group", "g", "", "group to operate on")

	for _, flag := range []string{"socket", "secret", "dial-timeout", "group"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("pueue")
	viper.AutomaticEnv()
}

// dial opens a connection to the daemon using the bound --socket/--secret
// flags. Every subcommand that talks to the daemon calls this and defers
// Close.
func dial() (*client.Client, error) {
	opts := []client.Option{
		client.WithDialTimeout(viper.GetDuration("dial-timeout")),
	}
	if secret := viper.GetString("secret"); secret != "" {
		opts = append(opts, client.WithSecret(secret))
	}

	c, err := client.Dial(viper.GetString("socket"), opts...)
	if err != nil {
		return nil, &connError{fmt.Errorf("could not connect to daemon at %s: %w", viper.GetString("socket"), err)}
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var ce *connError
		if errors.As(err, &ce) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
