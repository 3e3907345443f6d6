// Command ai_cli drives an in-memory editing session from the terminal so
// prompts and provider output can be checked without the web client.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"onepager/internal/actions"
	"onepager/internal/config"
	models "onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
	"onepager/internal/metrics"
	"onepager/internal/richtext"
	"onepager/internal/service/analysis"
	"onepager/internal/service/llm"
	"onepager/internal/service/onepager"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx       context.Context
	service   services.OnePagerService
	principal models.Principal
	scanner   *bufio.Scanner
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	catalog, err := actions.Load()
	if err != nil {
		fmt.Printf("%s❌ Failed to load actions: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	generator, err := llm.SetupGenerator(cfg, catalog, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup generator: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	cli := &CLI{
		ctx: context.Background(),
		service: onepager.NewService(onepager.Deps{
			Analyzer:  analysis.NewEngine(),
			Generator: generator,
			Catalog:   catalog,
			Metrics:   metrics.New(prometheus.NewRegistry()),
			Debounce:  time.Second,
			Logger:    logger,
		}),
		principal: models.Principal{GuestID: uuid.NewString()},
		scanner:   bufio.NewScanner(os.Stdin),
	}
	defer func() { _ = cli.service.Shutdown(context.Background()) }()

	fmt.Printf("%sprovider: %s  model: %s%s\n", colorCyan, cfg.AIProvider, cfg.AIModel, colorReset)
	cli.help()
	cli.show()

	for {
		fmt.Printf("%s> %s", colorBlue, colorReset)
		if !cli.scanner.Scan() {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(cli.scanner.Text()), " ")
		switch cmd {
		case "":
		case "gen":
			cli.generate(arg)
		case "actions":
			cli.actions(arg)
		case "refine":
			cli.refine(arg)
		case "accept", "reject":
			cli.resolve(cmd, arg)
		case "show":
			cli.show()
		case "md":
			md, err := cli.service.ExportMarkdown(cli.ctx, cli.principal)
			if cli.check(err) {
				fmt.Println(md)
			}
		case "help":
			cli.help()
		case "quit", "exit":
			return
		default:
			fmt.Printf("%sunknown command %q%s\n", colorYellow, cmd, colorReset)
		}
	}
}

func (c *CLI) help() {
	fmt.Println("commands: gen <title> | actions <n> | refine <n> <action> | accept <n> | reject <n> | show | md | quit")
}

func (c *CLI) check(err error) bool {
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return false
	}
	return true
}

// block resolves a 1-based section number to a block id.
func (c *CLI) block(arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Printf("%sexpected a section number%s\n", colorYellow, colorReset)
		return "", false
	}
	view, err := c.service.View(c.ctx, c.principal)
	if !c.check(err) {
		return "", false
	}
	if n < 1 || n >= len(view.Blocks) {
		fmt.Printf("%sno section %d%s\n", colorYellow, n, colorReset)
		return "", false
	}
	return view.Blocks[n].ID, true
}

func (c *CLI) generate(title string) {
	start := time.Now()
	_, err := c.service.Generate(c.ctx, c.principal, &services.GenerateRequest{Title: title})
	if c.check(err) {
		fmt.Printf("%s✅ generated in %s%s\n", colorGreen, time.Since(start).Round(time.Millisecond), colorReset)
		c.show()
	}
}

func (c *CLI) actions(arg string) {
	id, ok := c.block(arg)
	if !ok {
		return
	}
	list, err := c.service.Actions(c.ctx, c.principal, id)
	if c.check(err) {
		for _, a := range list {
			fmt.Printf("  - %s\n", a)
		}
	}
}

func (c *CLI) refine(arg string) {
	num, action, _ := strings.Cut(arg, " ")
	id, ok := c.block(num)
	if !ok {
		return
	}
	_, err := c.service.RequestAction(c.ctx, c.principal, id, &services.ActionRequest{Action: action})
	if !c.check(err) {
		return
	}

	fmt.Printf("%s… waiting for suggestion%s\n", colorCyan, colorReset)
	for {
		view, err := c.service.View(c.ctx, c.principal)
		if !c.check(err) {
			return
		}
		if len(view.Loading) == 0 {
			if msg, failed := view.Errors[id]; failed {
				fmt.Printf("%s❌ %s%s\n", colorRed, msg, colorReset)
				return
			}
			c.print(view)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func (c *CLI) resolve(cmd, arg string) {
	id, ok := c.block(arg)
	if !ok {
		return
	}
	var err error
	if cmd == "accept" {
		_, err = c.service.Accept(c.ctx, c.principal, id)
	} else {
		_, err = c.service.Reject(c.ctx, c.principal, id)
	}
	if c.check(err) {
		c.show()
	}
}

func (c *CLI) show() {
	view, err := c.service.View(c.ctx, c.principal)
	if c.check(err) {
		c.print(view)
	}
}

func (c *CLI) print(view *models.View) {
	fmt.Printf("\n%s# %s%s\n", colorGreen, view.Title, colorReset)
	for i, b := range view.Blocks[1:] {
		marker := ""
		if b.Suggestion != nil {
			marker = colorYellow + " [suggested: " + b.Suggestion.Action + "]" + colorReset
		}
		fmt.Printf("\n%s%d. %s%s%s\n%s\n", colorBlue, i+1, b.Title, colorReset, marker, richtext.ToMarkdown(b.Content))
		if b.FollowUp != nil {
			fmt.Printf("%s   follow-up available: %s%s\n", colorCyan, b.FollowUp.Action, colorReset)
		}
	}
	for _, f := range view.Findings {
		fmt.Printf("%s! %s%s\n", colorYellow, f.Message, colorReset)
	}
	fmt.Println()
}
