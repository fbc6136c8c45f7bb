// Command linekv-cli is an interactive client for linekv-server. It can
// also run a Lua script against the server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/raniellyferreira/linekv/client"
	"github.com/raniellyferreira/linekv/lua"
)

const dialTimeout = 5 * time.Second

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		addr   string
		script string
	)

	cmd := &cobra.Command{
		Use:          "linekv-cli [args...]",
		Short:        "Send commands to a linekv server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), dialTimeout)
			c, err := client.Dial(ctx, addr)
			cancel()
			if err != nil {
				fmt.Fprintf(stderr, "Failed to connect: %v\n", err)
				return err
			}
			defer c.Close()

			if script != "" {
				return runScript(c, script, args, stdout)
			}

			fmt.Fprintln(stdout, "Enter message to send (Ctrl+D to exit):")
			fmt.Fprintf(stdout, "Successfully connected to %s\n", c.RemoteAddr())
			return interact(c, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Server address")
	cmd.Flags().StringVar(&script, "script", "", "Lua script to run instead of the interactive prompt")

	return cmd
}

// interact sends each input line to the server and prints the response
// until input ends or the server closes the connection
func interact(c *client.Client, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(errOut, "Error reading from stdin: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "\nInput closed. Exiting.")
			return nil
		}

		resp, err := c.Do(scanner.Text())
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\nServer closed the connection.")
				return nil
			}
			fmt.Fprintf(errOut, "Request failed: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "Server response: %s\n", resp)
	}
}

// runScript runs a Lua file and prints its result, if any
func runScript(c *client.Client, path string, args []string, out io.Writer) error {
	result, err := lua.NewEngine(c).EvalFile(path, args)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Fprintln(out, result)
	}
	return nil
}
