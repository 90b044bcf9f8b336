// Точка входа repairctl — клиента ремонтной мастерской в терминале.
package main

import (
	"fmt"
	"os"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/cli"
	"github.com/bigkaa/repairshop-portal/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}

	if err := cli.NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %s\n", apiclient.Message(err))
		os.Exit(1)
	}
}
