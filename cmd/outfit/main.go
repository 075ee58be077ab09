package main

import (
	"fmt"
	"os"

	// Feature packages register themselves on import.
	_ "github.com/outfit-dev/outfit/pkg/features/android"
	_ "github.com/outfit-dev/outfit/pkg/features/awscli"
	_ "github.com/outfit-dev/outfit/pkg/features/claudecode"
	_ "github.com/outfit-dev/outfit/pkg/features/golang"
	_ "github.com/outfit-dev/outfit/pkg/features/java"
	_ "github.com/outfit-dev/outfit/pkg/features/kotlin"
	_ "github.com/outfit-dev/outfit/pkg/features/onepassword"
	_ "github.com/outfit-dev/outfit/pkg/features/python"
	_ "github.com/outfit-dev/outfit/pkg/features/rlang"
	_ "github.com/outfit-dev/outfit/pkg/features/ruby"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
