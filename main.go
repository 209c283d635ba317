package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bkgoodman/superpwdhash/cmd"
	"github.com/bkgoodman/superpwdhash/internal/config"
	"github.com/bkgoodman/superpwdhash/internal/logger"
)

func main() {
	os.Exit(run())
}

// run returns the exit code. Commands return errors instead of exiting so
// that deferred password wipes always run.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	global := flag.NewFlagSet("superpwdhash", flag.ContinueOnError)
	configPath := global.String("config", "", "Path to a YAML config file")
	dbPath := global.String("db", "", "Site registry database (overrides SUPERPWDHASH_DB)")
	verbose := global.Bool("v", false, "Log debug output to stderr")
	global.Usage = printUsage
	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	args := global.Args()
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	if err := logger.Setup(cfg.Environment, level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer logger.Sync()

	ctx = logger.WithFields(ctx, zap.String("command", args[0]))

	var cmdErr error
	switch args[0] {
	case "init":
		cmdErr = runInit(ctx, cfg, args[1:])
	case "add":
		cmdErr = runAdd(ctx, cfg, args[1:])
	case "rm":
		cmdErr = runRm(ctx, cfg, args[1:])
	case "ls":
		cmdErr = runLs(ctx, cfg, args[1:])
	case "get", "derive":
		cmdErr = runGet(ctx, cfg, args[1:])
	case "selftest":
		cmdErr = runSelfTest(ctx, args[1:])
	case "import":
		cmdErr = runImport(ctx, cfg, args[1:])
	case "export":
		cmdErr = runExport(ctx, cfg, args[1:])
	case "compact":
		cmdErr = runCompact(ctx, cfg, args[1:])
	case "completion":
		cmdErr = runCompletion(args[1:])
	case "help", "-h", "--help":
		if len(args) < 2 {
			printUsage()
			return 0
		}
		printCommandHelp(args[1])
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		return 1
	}

	if cmdErr != nil {
		cmd.HandleError(cmdErr)
		return 1
	}
	return 0
}

func runInit(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Init(ctx, cfg.DBPath)
}

func runAdd(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Add(ctx, cfg.DBPath, fs.Args())
}

func runRm(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Remove(ctx, cfg.DBPath, fs.Args())
}

func runLs(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	quiet := fs.Bool("q", false, "Print realms only, one per line")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Ls(ctx, cfg.DBPath, *quiet)
}

func runGet(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	add := fs.Bool("add", false, "Also register the sites")
	profile := fs.String("profile", cfg.Profile, "Derivation profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Get(ctx, cfg.DBPath, fs.Args(), *profile, *add)
}

func runSelfTest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.SelfTest(ctx)
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Show changes without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Import(ctx, cfg.DBPath, fs.Arg(0), *dryRun)
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Export(ctx, cfg.DBPath, *output)
}

func runCompact(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.Compact(ctx, cfg.DBPath)
}

func runCompletion(args []string) error {
	if len(args) < 1 {
		return &cmd.UsageError{
			Msg:   "missing shell",
			Usage: "superpwdhash completion <bash|zsh|fish>",
		}
	}
	return cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("superpwdhash - Derive per-site passwords from one master password")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  superpwdhash [-db path] [-config file] [-v] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  get, derive Derive the password for one or more sites")
	fmt.Println("  add         Register sites")
	fmt.Println("  rm          Remove sites from the registry")
	fmt.Println("  ls          List registered sites")
	fmt.Println("  init        Store a master password verifier to catch typos")
	fmt.Println("  selftest    Check this build against reference vectors")
	fmt.Println("  import      Import a JSON host list")
	fmt.Println("  export      Export the registry as a JSON host list")
	fmt.Println("  compact     Compact the registry database")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  superpwdhash get example.com              # Derive a password")
	fmt.Println("  superpwdhash get --add https://github.com # Derive and remember the site")
	fmt.Println("  superpwdhash ls                           # Show known sites")
	fmt.Println()
	fmt.Println("Use 'superpwdhash help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "get", "derive":
		fmt.Println("superpwdhash get [--add] [--profile name] <site> [site...]")
		fmt.Println()
		fmt.Println("Derives the password for each site from the master password.")
		fmt.Println("Sites may be host names or full URLs; both reduce to the same realm.")
		fmt.Println("The master password is read from SUPERPWDHASH_PASSWORD or prompted for.")
		fmt.Println("If a verifier was stored with 'init', a mistyped master password is rejected.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --add           Also register the sites")
		fmt.Println("  --profile name  Derivation profile (default, long)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  superpwdhash get example.com")
		fmt.Println("  superpwdhash get --profile long https://bank.example/login")
	case "add":
		fmt.Println("superpwdhash add <site> [site...]")
		fmt.Println()
		fmt.Println("Registers sites. URLs are reduced to their host name.")
		fmt.Println("Does not require a password.")
	case "rm":
		fmt.Println("superpwdhash rm <site> [site...]")
		fmt.Println()
		fmt.Println("Removes sites from the registry.")
		fmt.Println("Does not require a password.")
	case "ls":
		fmt.Println("superpwdhash ls [-q]")
		fmt.Println()
		fmt.Println("Lists registered sites.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -q   Print realms only, one per line")
	case "init":
		fmt.Println("superpwdhash init")
		fmt.Println()
		fmt.Println("Stores an encrypted check value derived from the master password.")
		fmt.Println("Later 'get' calls refuse a master password that does not match it.")
		fmt.Println("The master password itself is never stored.")
	case "selftest":
		fmt.Println("superpwdhash selftest")
		fmt.Println()
		fmt.Println("Derives a fixed set of reference vectors and checks the output policy.")
		fmt.Println("A failure means this build would derive different passwords.")
	case "import":
		fmt.Println("superpwdhash import [--dry-run] <file|->")
		fmt.Println()
		fmt.Println("Merges a JSON array of hosts or URLs into the registry")
		fmt.Println("and prints the resulting listing diff.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --dry-run   Show changes without saving")
	case "export":
		fmt.Println("superpwdhash export [-o file]")
		fmt.Println()
		fmt.Println("Writes the registry as a JSON array of realms.")
	case "compact":
		fmt.Println("superpwdhash compact")
		fmt.Println()
		fmt.Println("Compacts the registry database to reclaim unused disk space.")
		fmt.Println("This is done automatically after 'rm'.")
	case "completion":
		fmt.Println("superpwdhash completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(superpwdhash completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(superpwdhash completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  superpwdhash completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
