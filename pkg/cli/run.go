package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/cli/config"
	"github.com/cottonlesergal/ucontrol/pkg/controller/view"
	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/usecase"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
	"github.com/cottonlesergal/ucontrol/pkg/utils/safe"
)

func cmdRun() *cli.Command {
	var apiCfg config.API
	var gwCfg config.Gateway
	var shadowCfg config.Shadow
	var appCfg config.App
	var noColor bool

	var flags []cli.Flag
	flags = append(flags, apiCfg.Flags()...)
	flags = append(flags, gwCfg.Flags()...)
	flags = append(flags, shadowCfg.Flags()...)
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "no-color",
		Usage:       "Disable colored output",
		Sources:     cli.EnvVars("UCONTROL_NO_COLOR"),
		Destination: &noColor,
	})

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Connect to the backend and run the interactive client",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := appCfg.Configure()
			if err != nil {
				return err
			}

			apiClient, err := apiCfg.Configure()
			if err != nil {
				return err
			}

			shadow, err := shadowCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if shadow != nil {
				defer safe.Close(ctx, shadow)
			}

			var viewOpts []view.Option
			if noColor {
				viewOpts = append(viewOpts, view.WithoutColor())
			}
			renderer := view.NewTerminal(os.Stdout, viewOpts...)

			opts := []usecase.Option{
				usecase.WithRenderer(renderer),
				usecase.WithPresenceOverrides(cfg.PresenceOverrides()),
			}
			if shadow != nil {
				opts = append(opts, usecase.WithShadow(shadow))
			}
			uc := usecase.New(apiClient, opts...)

			if err := uc.Initialize(ctx); err != nil {
				return goerr.Wrap(err, "failed to initialize client")
			}

			var botID types.UserID
			if bot := uc.State().BotUser(); bot != nil {
				botID = bot.ID
			}
			gw, err := gwCfg.Configure(uc.HandleEnvelope, uc.HandleConnectionStatus, botID)
			if err != nil {
				return err
			}
			uc.AttachGateway(gw)
			if err := gw.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start gateway")
			}
			defer safe.Close(ctx, gw)

			logging.From(ctx).Info("client ready", "bot_id", botID)
			return commandLoop(ctx, uc, renderer)
		},
	}
}

// commandLoop reads user commands from stdin until EOF or cancellation.
// Input starting with "/" is a command; anything else is sent as a message
// to the open conversation.
func commandLoop(ctx context.Context, uc *usecase.UseCases, renderer interfaces.Renderer) error {
	scanner := bufio.NewScanner(os.Stdin)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/q" {
				return nil
			}
			if err := handleCommand(ctx, uc, renderer, line); err != nil {
				logging.From(ctx).Error("command failed", "input", line, "error", err)
			}
		}
	}
}

func handleCommand(ctx context.Context, uc *usecase.UseCases, renderer interfaces.Renderer, line string) error {
	if !strings.HasPrefix(line, "/") {
		return uc.SendMessage(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/servers":
		renderer.RenderGuilds(uc.State().Snapshot())
		return nil
	case "/server", "/s":
		guildID := resolveGuild(uc, arg)
		if guildID == "" {
			renderer.Notice(interfaces.NoticeError, fmt.Sprintf("Unknown server: %s", arg))
			return nil
		}
		return uc.SelectGuild(ctx, guildID)
	case "/channel", "/c":
		channelID := resolveChannel(uc, arg)
		if channelID == "" {
			renderer.Notice(interfaces.NoticeError, fmt.Sprintf("Unknown channel: %s", arg))
			return nil
		}
		return uc.SelectChannel(ctx, channelID)
	case "/dms":
		return uc.SwitchToDMView(ctx)
	case "/dm", "/d":
		userID := resolveDMUser(uc, arg)
		if userID == "" {
			renderer.Notice(interfaces.NoticeError, fmt.Sprintf("Unknown user: %s", arg))
			return nil
		}
		return uc.SelectDMUser(ctx, userID)
	case "/older":
		return uc.LoadOlderMessages(ctx)
	case "/typing":
		return uc.SendTyping(ctx)
	default:
		renderer.Notice(interfaces.NoticeError, fmt.Sprintf("Unknown command: %s", cmd))
		return nil
	}
}

func resolveGuild(uc *usecase.UseCases, arg string) types.GuildID {
	for _, g := range uc.State().Guilds() {
		if string(g.ID) == arg || strings.EqualFold(g.Name, arg) {
			return g.ID
		}
	}
	return ""
}

func resolveChannel(uc *usecase.UseCases, arg string) types.ChannelID {
	name := strings.TrimPrefix(arg, "#")
	for _, ch := range uc.State().Channels() {
		if ch.Type != types.ChannelTypeText {
			continue
		}
		if string(ch.ID) == arg || strings.EqualFold(ch.Name, name) {
			return ch.ID
		}
	}
	return ""
}

func resolveDMUser(uc *usecase.UseCases, arg string) types.UserID {
	for _, u := range uc.State().DMUsers() {
		if string(u.ID) == arg || strings.EqualFold(u.Username, arg) || strings.EqualFold(u.Name(), arg) {
			return u.ID
		}
	}
	return ""
}
