package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
	"github.com/Tap30/analytics-go/backends"
)

const collector = "http://localhost:3000"

var dispatcher *analytics.Dispatcher
var scanner *bufio.Scanner
var propCounter int
var eventCounter int
var httpAdapter *ContextAwareHTTPAdapter

func main() {
	scanner = bufio.NewScanner(os.Stdin)

	httpAdapter = NewContextAwareHTTPAdapter(10 * time.Second) // Default 10s timeout
	logger := adapters.NewPrintLoggerAdapter(adapters.LogLevelDebug)

	var err error
	dispatcher, err = analytics.NewDispatcher(analytics.DispatcherConfig{LoggerAdapter: logger})
	if err != nil {
		fmt.Printf("❌ Failed to create dispatcher: %v\n", err)
		return
	}
	defer dispatcher.Close()

	opts := func(path string, extra ...backends.Option) []backends.Option {
		return append([]backends.Option{
			backends.WithHTTPAdapter(httpAdapter),
			backends.WithLogger(logger),
			backends.WithEndpoint(collector + path),
		}, extra...)
	}

	for _, a := range []analytics.Adapter{
		backends.NewGoogleAnalytics("UA-1-1", "playground",
			opts("/collect", backends.WithValidationEndpoint(collector+"/debug/collect"))...),
		backends.NewMixpanel("playground-token",
			opts("/track", backends.WithProfileEndpoint(collector+"/engage"))...),
		backends.NewActiveCampaign("key", "act", "api-key", "playground",
			opts("/event", backends.WithCRMEndpoint(collector+"/api/3"))...),
		backends.NewPlausible("example.com", "api-key", "playground/1.0", "127.0.0.1", opts("")...),
		backends.NewOrbit("playground", "api-key", "playground", opts("/api/v1")...),
	} {
		if err := dispatcher.Register(a); err != nil {
			fmt.Printf("❌ Failed to register %s: %v\n", a.Name(), err)
			return
		}
	}

	fmt.Println("🎯 Analytics Interactive Client")
	fmt.Println("Sending to: " + collector)
	fmt.Println("⏱️  HTTP Timeout: 10s (configurable)")
	fmt.Println()

	for {
		showMenu()
		choice := readInput("Choose an option: ")

		switch choice {
		case "1":
			trackPageview()
		case "2":
			trackEventWithProps()
		case "3":
			setSharedProp()
		case "4":
			viewSharedProps()
		case "5":
			toggleAdapter()
		case "6":
			validateEvent()
		case "7":
			syncContact()
		case "8":
			trackToFailingEndpoint()
		case "9":
			setHTTPTimeout()
		case "10":
			testTimeoutScenario()
		case "11":
			fmt.Println("👋 Goodbye!")
			return
		default:
			fmt.Println("❌ Invalid option. Please try again.")
			fmt.Println()
		}
	}
}

func showMenu() {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("📊 Event Tracking")
	fmt.Println("1. Track Pageview")
	fmt.Println("2. Track Event with Props")
	fmt.Println()
	fmt.Println("🏷️  Shared Props")
	fmt.Println("3. Set Shared Prop")
	fmt.Println("4. View Shared Props")
	fmt.Println()
	fmt.Println("🔌 Adapters")
	fmt.Println("5. Enable/Disable Adapter")
	fmt.Println("6. Validate Event")
	fmt.Println("7. Sync CRM Contact")
	fmt.Println()
	fmt.Println("⚠️  Error Handling")
	fmt.Println("8. Track to Failing Endpoint")
	fmt.Println()
	fmt.Println("⏱️  Context & Timeout Control")
	fmt.Println("9. Set HTTP Timeout")
	fmt.Println("10. Test Timeout Scenario")
	fmt.Println()
	fmt.Println("11. Exit")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

func readInput(prompt string) string {
	fmt.Print(prompt)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

func printResults(results []analytics.Result) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Printf("  ❌ %-16s %v\n", r.Adapter, r.Err)
		case r.Sent:
			fmt.Printf("  ✅ %-16s sent in %v\n", r.Adapter, r.Duration.Round(time.Millisecond))
		default:
			fmt.Printf("  ⏸️  %-16s disabled\n", r.Adapter)
		}
	}
	fmt.Println()
}

func trackPageview() {
	fmt.Println("\n📊 Track Pageview")
	event := analytics.NewEvent().
		SetType("pageview").
		SetName("home").
		SetURL("https://example.com/").
		SetProp("email", "playground@example.com")
	printResults(dispatcher.Send(context.Background(), event))
}

func trackEventWithProps() {
	fmt.Println("\n📊 Track Event with Props")
	eventCounter++
	event := analytics.NewEvent().
		SetType("signup").
		SetName(fmt.Sprintf("signup_%d", eventCounter)).
		SetURL("https://example.com/signup").
		SetValue(float64(eventCounter)).
		SetProps(map[string]any{
			"email":    "playground@example.com",
			"category": "onboarding",
			"plan":     "pro",
			"tags":     []string{"playground", "trial"},
		})
	printResults(dispatcher.Send(context.Background(), event))
}

func setSharedProp() {
	fmt.Println("\n🏷️  Set Shared Prop")
	propCounter++
	key := fmt.Sprintf("key_%d", propCounter)
	value := fmt.Sprintf("value_%d", propCounter)

	if err := dispatcher.SetProp(key, value); err != nil {
		fmt.Printf("❌ %v\n\n", err)
		return
	}
	fmt.Printf("✅ Shared prop set: %s = %s\n\n", key, value)
}

func viewSharedProps() {
	fmt.Println("\n👀 Current Shared Props")
	props := dispatcher.Props()
	if len(props) == 0 {
		fmt.Println("(empty)")
	} else {
		for k, v := range props {
			fmt.Printf("  %s: %v\n", k, v)
		}
	}
	fmt.Println()
}

func toggleAdapter() {
	fmt.Println("\n🔌 Enable/Disable Adapter")
	for _, name := range dispatcher.Names() {
		a, _ := dispatcher.Adapter(name)
		fmt.Printf("  %-16s enabled=%t\n", name, a.Enabled())
	}
	name := readInput("Adapter name: ")

	a, ok := dispatcher.Adapter(name)
	if !ok {
		fmt.Printf("❌ Unknown adapter %q\n\n", name)
		return
	}
	if a.Enabled() {
		a.Disable()
	} else {
		a.Enable()
	}
	fmt.Printf("✅ %s enabled=%t\n\n", name, a.Enabled())
}

func validateEvent() {
	fmt.Println("\n🔍 Validate Event")
	event := analytics.NewEvent().
		SetType("signup").
		SetName("signup").
		SetProp("email", "playground@example.com")
	for _, name := range dispatcher.Names() {
		a, _ := dispatcher.Adapter(name)
		v, ok := a.(analytics.Validator)
		if !ok {
			continue
		}
		valid, err := v.Validate(context.Background(), event)
		if err != nil {
			fmt.Printf("  ❌ %-16s %v\n", name, err)
			continue
		}
		fmt.Printf("  🔍 %-16s valid=%t\n", name, valid)
	}
	fmt.Println()
}

func syncContact() {
	fmt.Println("\n👤 Sync CRM Contact")
	a, ok := dispatcher.Adapter("ActiveCampaign")
	if !ok {
		fmt.Println("❌ ActiveCampaign is not registered")
		return
	}
	crm := a.(analytics.ContactManager)

	ctx := context.Background()
	contact := analytics.Contact{Email: "playground@example.com", FirstName: "Play", LastName: "Ground"}
	if _, err := crm.FindContact(ctx, contact.Email); err != nil {
		fmt.Printf("  ℹ️  lookup: %v\n", err)
		if err := crm.CreateContact(ctx, contact); err != nil {
			fmt.Printf("❌ Create failed: %v\n\n", err)
			return
		}
	}
	fmt.Println("✅ Contact synced")
	fmt.Println()
}

func trackToFailingEndpoint() {
	fmt.Println("\n⚠️  Track to Failing Endpoint")
	ga := backends.NewGoogleAnalytics("UA-1-1", "playground",
		backends.WithHTTPAdapter(httpAdapter),
		backends.WithLogger(adapters.NewPrintLoggerAdapter(adapters.LogLevelDebug)),
		backends.WithEndpoint(collector+"/collect?fail=1"),
	)
	ok, err := ga.CreateEvent(context.Background(), analytics.NewEvent().SetType("error_test"))
	fmt.Printf("✅ Dispatched=%t err=%v (the 500 reply is only logged)\n\n", ok, err)

	down := backends.NewGoogleAnalytics("UA-1-1", "playground",
		backends.WithEndpoint("http://localhost:9999/invalid"),
	)
	ok, err = down.CreateEvent(context.Background(), analytics.NewEvent().SetType("error_test"))
	fmt.Printf("✅ Unreachable endpoint: dispatched=%t err=%v\n\n", ok, err)
}

func setHTTPTimeout() {
	fmt.Println("\n⏱️  Set HTTP Timeout")
	fmt.Println("Current timeout: ", time.Duration(httpAdapter.timeout.Load()))
	input := readInput("Enter timeout in seconds (e.g., 5): ")

	var seconds int
	if _, err := fmt.Sscanf(input, "%d", &seconds); err != nil {
		fmt.Printf("❌ Invalid input: %v\n\n", err)
		return
	}

	httpAdapter.SetTimeout(time.Duration(seconds) * time.Second)
	fmt.Printf("✅ HTTP timeout set to %d seconds\n\n", seconds)
}

func testTimeoutScenario() {
	fmt.Println("\n⏱️  Test Timeout Scenario")
	fmt.Println("Setting timeout to 1ms to force timeout...")

	originalTimeout := time.Duration(httpAdapter.timeout.Load())
	httpAdapter.SetTimeout(1 * time.Millisecond)

	printResults(dispatcher.Send(context.Background(), analytics.NewEvent().SetType("timeout_test")))

	httpAdapter.SetTimeout(originalTimeout)
	fmt.Printf("✅ Restored timeout to %v\n\n", originalTimeout)
}
