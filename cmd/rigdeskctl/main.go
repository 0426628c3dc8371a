package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pcarneir0/rigdesk/internal/api"
	"github.com/pcarneir0/rigdesk/internal/badge"
	"github.com/pcarneir0/rigdesk/internal/config"
	"github.com/pcarneir0/rigdesk/internal/profile"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	serverFlag := flag.String("server", "", "API base URL (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		cfg = config.Default()
	}
	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if args[0] == "login" {
		cmdLogin(ctx, cfg, profileName)
		return
	}

	token, err := profile.LoadToken(profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: no auth token for profile %q, run rigdeskctl login first\n", profileName)
		os.Exit(1)
	}
	client := api.New(cfg.ServerURL, token, zap.NewNop())

	switch args[0] {
	case "unread":
		cmdUnread(ctx, client, *jsonFlag)
	case "inbox":
		cmdInbox(ctx, client, *jsonFlag)
	case "send":
		cmdSend(ctx, client, args[1:], *jsonFlag)
	case "mark-read":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: rigdeskctl mark-read <thread-id>")
			os.Exit(1)
		}
		cmdMarkRead(ctx, client, args[1])
	case "notifications":
		cmdNotifications(ctx, client, cfg.Language, args[1:], *jsonFlag)
	case "notify-read":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: rigdeskctl notify-read <notification-id|all>")
			os.Exit(1)
		}
		cmdNotifyRead(ctx, client, args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: rigdeskctl [--profile <name>] [--server <url>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login                          Authenticate and store a token")
	fmt.Fprintln(os.Stderr, "  unread                         Show unread message and notification counts")
	fmt.Fprintln(os.Stderr, "  inbox                          List conversations")
	fmt.Fprintln(os.Stderr, "  send --to <ids> --subject <s>  Send a message (body on stdin)")
	fmt.Fprintln(os.Stderr, "  mark-read <thread-id>          Mark a thread read")
	fmt.Fprintln(os.Stderr, "  notifications [--unread]       List notifications")
	fmt.Fprintln(os.Stderr, "  notify-read <id|all>           Mark a notification (or all) read")
}

func cmdLogin(ctx context.Context, cfg *config.Config, profileName string) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		fail(err)
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fail(err)
	}

	client := api.New(cfg.ServerURL, "", zap.NewNop())
	res, err := client.Login(ctx, strings.TrimSpace(email), string(pw))
	if err != nil {
		fail(err)
	}
	if err := profile.EnsureDir(profileName); err != nil {
		fail(err)
	}
	if err := profile.SaveToken(profileName, res.Token); err != nil {
		fail(err)
	}
	fmt.Printf("Logged in as %s (%s)\n", res.User.Name, res.User.Role)
}

func cmdUnread(ctx context.Context, c *api.Client, jsonOut bool) {
	messages, err := c.Messaging.UnreadCount(ctx)
	if err != nil {
		fail(err)
	}
	notifications, err := c.Notifications.UnreadCount(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(map[string]int{"messages": messages, "notifications": notifications})
		return
	}
	fmt.Printf("Messages:      %d\n", messages)
	fmt.Printf("Notifications: %d\n", notifications)
}

func cmdInbox(ctx context.Context, c *api.Client, jsonOut bool) {
	page, err := c.Messaging.ListConversations(ctx, 1, 20)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(page)
		return
	}
	if len(page.Conversations) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, conv := range page.Conversations {
		marker := "   "
		if b := badge.Format(conv.UnreadCount); b != "" {
			marker = fmt.Sprintf("%3s", b)
		}
		fmt.Printf("%s  %-24s  %-40s  %s\n", marker, conv.ThreadID,
			truncateTo(conv.Subject, 40), conv.LastMessageAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%s\n", paginationFooter(page.Pagination))
}

func paginationFooter(p api.Pagination) string {
	return fmt.Sprintf("page %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
}

func cmdSend(ctx context.Context, c *api.Client, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	to := fs.String("to", "", "comma-separated recipient ids")
	subject := fs.String("subject", "", "message subject")
	thread := fs.String("thread", "", "reply to an existing thread")
	_ = fs.Parse(args)

	body, err := readBody()
	if err != nil {
		fail(err)
	}

	var recipients []string
	for _, id := range strings.Split(*to, ",") {
		if id = strings.TrimSpace(id); id != "" {
			recipients = append(recipients, id)
		}
	}

	conv, err := c.Messaging.Send(ctx, api.SendRequest{
		Recipients: recipients,
		Subject:    *subject,
		Body:       body,
		ThreadID:   *thread,
	})
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(conv)
		return
	}
	fmt.Printf("Sent. Thread: %s\n", conv.ThreadID)
}

func cmdMarkRead(ctx context.Context, c *api.Client, threadID string) {
	if err := c.Messaging.MarkThreadRead(ctx, threadID); err != nil {
		fail(err)
	}
	fmt.Println("Marked read.")
}

func cmdNotifications(ctx context.Context, c *api.Client, lang string, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	unreadOnly := fs.Bool("unread", false, "unread only")
	_ = fs.Parse(args)

	items, err := c.Notifications.List(ctx, *unreadOnly, 50)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return
	}
	for _, n := range items {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s %-24s  %-30s  %s\n", marker, n.ID,
			truncateTo(n.Title.Resolve(lang), 30), truncateTo(n.Message.Resolve(lang), 50))
	}
}

func cmdNotifyRead(ctx context.Context, c *api.Client, id string) {
	var err error
	if id == "all" {
		err = c.Notifications.MarkAllRead(ctx)
	} else {
		err = c.Notifications.MarkRead(ctx, id)
	}
	if err != nil {
		fail(err)
	}
	fmt.Println("Marked read.")
}

// readBody takes the message body from stdin, either piped or typed and
// terminated with EOF.
func readBody() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Enter message body, end with Ctrl-D:")
	}
	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func truncateTo(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", api.UserMessage(err, err.Error()))
	os.Exit(1)
}
