package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"moviebot/whatsapp-bot/pkgs/app"
	"moviebot/whatsapp-bot/pkgs/conf"
	"moviebot/whatsapp-bot/pkgs/whatsapp"

	urfave "github.com/urfave/cli/v2"
)

const resetCommand = "/reset"

// RunCLI starts the CLI application. Without a subcommand it serves the webhook.
func RunCLI(ctx context.Context) {
	if err := NewApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func NewApp() *urfave.App {
	return &urfave.App{
		Name:   "moviebot",
		Usage:  "WhatsApp movie expert bot",
		Action: serve,
		Commands: []*urfave.Command{
			{
				Name:   "serve",
				Usage:  "Run the webhook server",
				Action: serve,
			},
			{
				Name:    "chat",
				Usage:   "Talk to the bot from the terminal",
				Aliases: []string{"c"},
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  "sender",
						Usage: "sender id the history is kept under",
						Value: "cli:local",
					},
				},
				Action: chat,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration with secrets masked",
				Action: printConfig,
			},
		},
	}
}

func loadApp(c *urfave.Context) (*app.App, error) {
	if err := conf.Load(); err != nil {
		return nil, err
	}
	return app.New(c.Context, conf.GetConfig())
}

func serve(c *urfave.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(c.Context)
}

func chat(c *urfave.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	return runChat(c.Context, a, c.String("sender"), c.App)
}

func runChat(ctx context.Context, a *app.App, sender string, cliApp *urfave.App) error {
	in := cliApp.Reader
	if in == nil {
		in = os.Stdin
	}
	out := cliApp.Writer
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "Chatting as %s. Type %s to forget the conversation, Ctrl-D to quit.\n", sender, resetCommand)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == resetCommand {
			if err := a.Conversation.Reset(ctx, sender); err != nil {
				return err
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		reply := a.Handler.Reply(ctx, whatsapp.InboundMessage{From: sender, Body: line})
		fmt.Fprintln(out, reply)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func printConfig(c *urfave.Context) error {
	if err := conf.Load(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(conf.GetConfig().Redacted(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
