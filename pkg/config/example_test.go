package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/colkit/pkg/config"
)

// ExampleDefault shows the default map and display settings.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Batch Size: %d\n", cfg.Map.BatchSize)
	fmt.Printf("Max Rows: %d\n", cfg.Display.MaxRows)
	fmt.Printf("Exporter: %s\n", cfg.Observability.Exporter)

	// Output:
	// Batch Size: 1
	// Max Rows: 10
	// Exporter: none
}

// ExampleLoad loads a file with an environment reference.
func ExampleLoad() {
	dir, err := os.MkdirTemp("", "colkit-config")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("COLKIT_EXAMPLE_ROOT", "/data/images")
	defer os.Unsetenv("COLKIT_EXAMPLE_ROOT")

	path := filepath.Join(dir, "colkit.yaml")
	content := "map:\n  batch_size: 16\ncells:\n  root: ${COLKIT_EXAMPLE_ROOT}\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cfg.Map.BatchSize, cfg.Cells.Root, cfg.Display.MaxRows)

	// Output:
	// 16 /data/images 10
}
