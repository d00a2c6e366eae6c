package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"passport-manager/internal/config"
	"passport-manager/internal/handler"
	"passport-manager/internal/notify"
	"passport-manager/internal/query"
	"passport-manager/internal/server"
	"passport-manager/internal/templates"
	"passport-manager/internal/whatsapp"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of the interactive CLI")
	flag.Parse()

	fmt.Println("🛂 Passport Manager")
	fmt.Println("===================")

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize notification history with sqlite persistence
	store, err := notify.OpenStore(cfg.HistoryDBPath)
	if err != nil {
		fmt.Printf("Error opening notification history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	events, err := notify.NewPersistentLog(store)
	if err != nil {
		fmt.Printf("Error loading notification history: %v\n", err)
		os.Exit(1)
	}

	// Initialize services
	clock := query.RealClock{}
	tstore := templates.NewStore(cfg.TemplatesPath)
	wa := whatsapp.NewService(events, clock)
	dashboard := handler.NewDashboard(tstore, events, wa, clock, &handler.Config{
		ExpiryWindowDays: cfg.ExpiryWindowDays,
	})

	if *serve {
		runServer(dashboard, cfg)
		return
	}

	runCLI(dashboard, cfg)
}

func runServer(dashboard *handler.Dashboard, cfg *config.Config) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()
	srv := server.New(dashboard, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		fmt.Printf("Listening on %s\n", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("\nShutting down...")
	_ = httpServer.Close()
}

func runCLI(dashboard *handler.Dashboard, cfg *config.Config) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Import passport data")
		fmt.Println("  2. Overview")
		fmt.Println("  3. Today's birthdays")
		fmt.Println("  4. Birthdays on a date")
		fmt.Println("  5. Expiring passports")
		fmt.Println("  6. Search records")
		fmt.Println("  7. Generate bulk message links")
		fmt.Println("  8. Notification history")
		fmt.Println("  9. Export history to CSV")
		fmt.Println("  10. Exit")
		fmt.Print("\nEnter command (1-10): ")

		if !scanner.Scan() {
			break
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			importData(scanner, dashboard)
		case "2":
			showOverview(dashboard)
		case "3":
			showBirthdays(dashboard.TodaysBirthdays())
		case "4":
			checkDate(scanner, dashboard)
		case "5":
			showExpiring(scanner, dashboard, cfg.ExpiryWindowDays)
		case "6":
			searchRecords(scanner, dashboard)
		case "7":
			bulkLinks(scanner, dashboard)
		case "8":
			showHistory(dashboard)
		case "9":
			exportHistory(scanner, dashboard)
		case "10":
			fmt.Println("Goodbye! 👋")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func importData(scanner *bufio.Scanner, dashboard *handler.Dashboard) {
	fmt.Print("Enter file path (.xlsx or .csv): ")
	if !scanner.Scan() {
		return
	}
	path := strings.TrimSpace(scanner.Text())

	result, err := dashboard.ImportFile(path)
	if err != nil {
		fmt.Printf("❌ Import failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Loaded %d records (%d rows dropped)\n", len(result.Records), result.Dropped)
}

func showOverview(dashboard *handler.Dashboard) {
	o := dashboard.Overview()
	fmt.Printf("\n📊 Records: %d | Birthdays today: %d | Expiring in %d days: %d\n",
		o.TotalRecords, o.BirthdaysToday, o.ExpiryWindowDays, o.ExpiringSoon)
	fmt.Printf("📜 Notifications: %d total, %d sent, %d failed\n",
		o.Notifications.Total, o.Notifications.Sent, o.Notifications.Failed)
}

func showBirthdays(views []handler.RecordView) {
	if len(views) == 0 {
		fmt.Println("\n🎂 No birthdays found.")
		return
	}

	fmt.Printf("\n🎉 Found %d birthdays:\n", len(views))
	fmt.Println(strings.Repeat("-", 60))
	for _, v := range views {
		fmt.Printf("Name: %s\n", v.Name)
		fmt.Printf("Phone: %s\n", v.PhoneStatus)
		fmt.Printf("Passport: %s\n", orNA(v.PassportNumber))
		if v.HasExpiry() {
			fmt.Printf("Expiry: %s\n", v.ExpiryDate.Format("02-01-2006"))
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}

func checkDate(scanner *bufio.Scanner, dashboard *handler.Dashboard) {
	day := promptInt(scanner, "Enter day (1-31): ")
	month := promptInt(scanner, "Enter month (1-12): ")
	if day == 0 || month == 0 {
		fmt.Println("Invalid date.")
		return
	}
	showBirthdays(dashboard.BirthdaysOn(day, month))
}

func showExpiring(scanner *bufio.Scanner, dashboard *handler.Dashboard, defaultDays int) {
	days := promptInt(scanner, fmt.Sprintf("Days to expiration (default %d): ", defaultDays))

	views := dashboard.Expiring(days)
	if len(views) == 0 {
		fmt.Println("\n📄 No passports expiring in that window.")
		return
	}

	fmt.Printf("\n⚠️ Found %d expiring passports:\n", len(views))
	fmt.Println(strings.Repeat("-", 60))
	for _, v := range views {
		daysLeft := "?"
		if v.DaysLeft != nil {
			daysLeft = strconv.Itoa(*v.DaysLeft)
		}
		fmt.Printf("Name: %s | Phone: %s | Expires: %s (%s days left)\n",
			v.Name, v.PhoneStatus, v.ExpiryDate.Format("02-01-2006"), daysLeft)
	}
	fmt.Println(strings.Repeat("-", 60))
}

func searchRecords(scanner *bufio.Scanner, dashboard *handler.Dashboard) {
	fmt.Println("\nSearch by:")
	fmt.Println("  1. Name")
	fmt.Println("  2. Passport number")
	fmt.Println("  3. Phone number")
	fmt.Print("Enter choice (1-3): ")

	if !scanner.Scan() {
		return
	}

	var field query.SearchField
	switch strings.TrimSpace(scanner.Text()) {
	case "1":
		field = query.SearchByName
	case "2":
		field = query.SearchByPassport
	case "3":
		field = query.SearchByPhone
	default:
		fmt.Println("Invalid choice.")
		return
	}

	fmt.Print("Enter search term: ")
	if !scanner.Scan() {
		return
	}

	results := dashboard.Search(field, strings.TrimSpace(scanner.Text()))
	if len(results) == 0 {
		fmt.Println("No matching records.")
		return
	}
	for _, v := range results {
		fmt.Printf("👤 %s | 📞 %s | 🛂 %s\n", v.Name, v.PhoneStatus, orNA(v.PassportNumber))
	}
}

func bulkLinks(scanner *bufio.Scanner, dashboard *handler.Dashboard) {
	fmt.Print("Template name (birthday/expiry/custom): ")
	if !scanner.Scan() {
		return
	}
	name := strings.TrimSpace(scanner.Text())

	result, err := dashboard.SendBulk(nil, name)
	if err != nil {
		fmt.Printf("❌ Bulk generation failed: %v\n", err)
		return
	}

	for i, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("%d. ❌ %s: %s\n", i+1, item.Record.Name, item.Error)
			continue
		}
		fmt.Printf("%d. 📱 %s: %s\n", i+1, item.Record.Name, item.Link)
	}
	fmt.Printf("\nGenerated %d links, %d failed.\n", result.OK, result.Failed)
}

func showHistory(dashboard *handler.Dashboard) {
	events := dashboard.History()
	if len(events) == 0 {
		fmt.Println("\nNo notification history available.")
		return
	}

	for _, e := range events {
		fmt.Printf("%s | %s | %s | %s | %s\n",
			e.Date.Format(notify.DateFormat), e.Name, e.Phone, e.Channel, e.Status)
	}

	summary := dashboard.HistorySummary()
	fmt.Printf("\nTotal: %d | Sent: %d | Failed: %d\n", summary.Total, summary.Sent, summary.Failed)
}

func exportHistory(scanner *bufio.Scanner, dashboard *handler.Dashboard) {
	fmt.Print("Output path (default notification_history.csv): ")
	if !scanner.Scan() {
		return
	}
	path := strings.TrimSpace(scanner.Text())
	if path == "" {
		path = "notification_history.csv"
	}

	data, err := dashboard.ExportHistoryCSV()
	if err != nil {
		fmt.Printf("❌ Export failed: %v\n", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Printf("❌ Error writing file: %v\n", err)
		return
	}
	fmt.Printf("✅ History exported to %s\n", path)
}

func promptInt(scanner *bufio.Scanner, prompt string) int {
	fmt.Print(prompt)
	if !scanner.Scan() {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return 0
	}
	return n
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
