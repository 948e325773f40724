package main

import (
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/onyx-go/ember"
)

const version = "0.1.0"

type Command struct {
	Name        string
	Description string
	Action      func(args []string) error
}

var commands = []Command{
	{
		Name:        "init",
		Description: "Generate starter app-config and properties files",
		Action:      initProject,
	},
	{
		Name:        "check",
		Description: "Run the type-safety gate over the configured source dirs",
		Action:      check,
	},
	{
		Name:        "version",
		Description: "Print the ember version",
		Action:      showVersion,
	},
}

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	commandName := os.Args[1]
	args := os.Args[2:]

	for _, cmd := range commands {
		if cmd.Name == commandName {
			if err := cmd.Action(args); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Printf("Unknown command: %s\n", commandName)
	showHelp()
}

func showHelp() {
	fmt.Println("🔥 Ember CLI Tool")
	fmt.Println("\nUsage:")
	fmt.Println("  ember [command] [arguments]")
	fmt.Println("\nAvailable commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-12s %s\n", cmd.Name, cmd.Description)
	}
}

func initProject(args []string) error {
	configPath := "ember.json"
	if len(args) > 0 {
		configPath = args[0]
	}

	if err := ember.WriteConfigTemplate(configPath); err != nil {
		return err
	}
	fmt.Printf("✅ App config ready: %s\n", configPath)

	config, err := ember.LoadAppConfig(configPath)
	if err != nil {
		return err
	}
	if err := ember.WritePropertiesTemplate(config.PropertiesFilePath); err != nil {
		return err
	}
	fmt.Printf("✅ Properties ready: %s\n", config.PropertiesFilePath)
	return nil
}

func check(args []string) error {
	configPath := "ember.json"
	if len(args) > 0 {
		configPath = args[0]
	}

	config, err := ember.LoadAppConfig(configPath)
	if err != nil {
		return err
	}

	if err := ember.TypeCheck(config.SourceDirs, config.FileExtension); err != nil {
		return err
	}
	fmt.Println("✅ No type-safety issues found")
	return nil
}

func showVersion(args []string) error {
	fmt.Printf("Ember Framework v%s\n", version)
	return nil
}
