package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/importer"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

func main() {
	adminEmail := flag.String("admin", "", "create or promote an admin account with this email")
	adminName := flag.String("admin-name", "Admin", "display name for a newly created admin")
	adminPassword := flag.String("admin-password", "", "password for a newly created admin")
	assumeYes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: seed [flags] [items.xlsx]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && *adminEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			*adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if _, err := db.EnsureAdmin(db.GetDB(), *adminName, *adminEmail, *adminPassword); err != nil {
			log.Fatal("Failed to ensure admin account:", err)
		}
		fmt.Printf("Admin account ready: %s\n", *adminEmail)
	}

	if flag.NArg() == 0 {
		return
	}

	filePath := flag.Arg(0)
	fmt.Printf("Reading XLSX file: %s\n", filePath)

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	result, err := importer.ReadItems(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	for _, s := range result.Skipped {
		fmt.Printf("  skipped row %d: %s\n", s.Row, s.Reason)
	}
	fmt.Printf("Sheet %q: %d items to import, %d rows skipped\n", result.Sheet, len(result.Items), len(result.Skipped))

	if len(result.Items) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	catalogService := service.NewCatalogService(repository.NewItemRepository(db.GetDB()))
	count, err := catalogService.ImportItems(context.Background(), result.Items)
	if err != nil {
		log.Fatal("Failed to import items:", err)
	}

	fmt.Printf("\n=== Import Summary ===\n")
	fmt.Printf("Imported: %d\n", count)
	fmt.Printf("Skipped:  %d\n", len(result.Skipped))
}
