package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pcarneir0/rigdesk/internal/app"
	"github.com/pcarneir0/rigdesk/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	serverFlag := flag.String("server", "", "API base URL (overrides config)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		app.Module(app.Params{
			ProfileName: profileName,
			ServerURL:   *serverFlag,
		}),
		fx.NopLogger,
	)

	fxApp.Run()
}
