package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
)

const defaultPassword = "testpassword123"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "sessions":
		sessionsCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Identity Simulator - Development tool for exercising the users API

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Register a channel plus N fans that all subscribe to it
  sessions  Walk a user through login, refresh, replay and logout
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8000)

EXAMPLES:
  # Create a channel with 5 subscribers
  simulator populate --count=5

  # Add 3 subscribers to an existing channel
  simulator populate --channel=somechannel --count=3

  # Check refresh-token rotation end to end
  simulator sessions`)
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	channelName := fs.String("channel", "", "Existing channel username (a new one is created when empty)")
	count := fs.Int("count", 5, "Number of fans to create")
	fs.Parse(args)

	if *count < 1 {
		fmt.Println("Error: --count must be at least 1")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Identity Simulator: Populate ===")
	fmt.Println()

	if *channelName == "" {
		fmt.Print("Creating channel user... ")
		channel, err := client.RegisterUser("Channel", defaultPassword)
		if err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
		*channelName = channel.Username
		fmt.Printf("OK (user: %s)\n", channel.Username)
	}

	fmt.Println()
	fmt.Printf("Adding %d fans to %s:\n", *count, *channelName)

	var channelID string
	for i := 0; i < *count; i++ {
		fan, err := client.RegisterUser(fmt.Sprintf("Fan%d", i+1), defaultPassword)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		auth, err := client.Login(fan.Username, defaultPassword)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to login: %v\n", i+1, *count, err)
			os.Exit(1)
		}

		if channelID == "" {
			profile, err := client.GetChannel(auth.AccessToken, *channelName)
			if err != nil {
				fmt.Printf("  FAILED to find channel: %v\n", err)
				os.Exit(1)
			}
			channelID = profile.ID
		}

		if _, err := client.ToggleSubscription(auth.AccessToken, channelID); err != nil {
			fmt.Printf("  [%d/%d] FAILED to subscribe: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s subscribed\n", i+1, *count, fan.Username)
	}

	auth, err := client.Login(*channelName, defaultPassword)
	if err == nil {
		if profile, err := client.GetChannel(auth.AccessToken, *channelName); err == nil {
			fmt.Println()
			fmt.Println("=========================================")
			fmt.Printf("  %s: %d subscribers, subscribed to %d\n",
				profile.Username, profile.SubscribersCount, profile.ChannelsSubscribedToCount)
			fmt.Println("=========================================")
		}
	}
}

func sessionsCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	failed := false

	check := func(name string, ok bool, detail error) {
		if ok {
			fmt.Printf("  PASS  %s\n", name)
			return
		}
		failed = true
		fmt.Printf("  FAIL  %s (%v)\n", name, detail)
	}

	fmt.Println("=== Identity Simulator: Sessions ===")
	fmt.Println()

	user, err := client.RegisterUser("Session", defaultPassword)
	if err != nil {
		fmt.Printf("Failed to register: %v\n", err)
		os.Exit(1)
	}
	auth, err := client.Login(user.Username, defaultPassword)
	if err != nil {
		fmt.Printf("Failed to login: %v\n", err)
		os.Exit(1)
	}

	rotated, err := client.Refresh(auth.RefreshToken)
	check("refresh issues a new pair", err == nil && rotated.RefreshToken != auth.RefreshToken, err)

	_, err = client.Refresh(auth.RefreshToken)
	check("replayed refresh token is rejected", isStatus(err, http.StatusUnauthorized), err)

	_, err = client.Login(user.Username, "wrong-password")
	check("wrong password is rejected", isStatus(err, http.StatusUnauthorized), err)

	if rotated != nil {
		err = client.Logout(rotated.AccessToken)
		check("logout succeeds", err == nil, err)

		_, err = client.Refresh(rotated.RefreshToken)
		check("refresh after logout is rejected", isStatus(err, http.StatusUnauthorized), err)
	}

	fmt.Println()
	if failed {
		os.Exit(1)
	}
	fmt.Println("All session checks passed")
}

func isStatus(err error, status int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == status
}
