package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	apppkg "github.com/kk-code-lab/seqview/internal/app"
	"github.com/kk-code-lab/seqview/internal/config"
	"github.com/kk-code-lab/seqview/internal/logging"
	"github.com/kk-code-lab/seqview/internal/remote"
	"github.com/kk-code-lab/seqview/internal/sequence"
	"github.com/kk-code-lab/seqview/internal/source"
)

const localWorkers = 4

func main() {
	var (
		explicitPattern = flag.String("pattern", "", "filename pattern with # placeholders, tried before configured patterns")
		showConfig      = flag.Bool("config", false, "print the config file path and contents, then exit")
		configFile      = flag.String("config-file", "", "config file path (default: per-user config dir)")
		radius          = flag.Uint64("radius", 0, "frames kept loaded on each side of the current one (default from config)")
		logFile         = flag.String("log-file", "", "write logs to this file (default from config)")
		debug           = flag.Bool("debug", false, "log at debug level")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seqview [flags] <file | user@host:/absolute/path>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*explicitPattern, *showConfig, *configFile, *radius, *logFile, *debug, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "seqview: %v\n", err)
		os.Exit(1)
	}
}

func run(explicitPattern string, showConfig bool, configFile string, radius uint64, logFile string, debug bool, args []string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if showConfig {
		return printConfig(configPath)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file argument, got %d", len(args))
	}

	if logFile == "" {
		logFile = cfg.LogFile
	}
	logger, sync, err := logging.New(logFile, debug)
	if err != nil {
		return err
	}
	defer sync()

	target, err := sequence.ParseTarget(args[0])
	if err != nil {
		return err
	}

	var sess *remote.Session
	var exists sequence.ExistsFunc
	if rd, ok := target.Dir.(sequence.RemoteDir); ok {
		logger.Info("connecting", zap.String("host", rd.UserHost()))
		sess, err = remote.Dial(rd.UserHost(), logger)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", rd.UserHost(), err)
		}
		exists = func(name string) (bool, error) {
			return sess.Exists(target.Dir.PathFor(name))
		}
	} else {
		exists = func(name string) (bool, error) {
			_, err := os.Stat(target.Dir.PathFor(name))
			if err != nil {
				if os.IsNotExist(err) {
					return false, nil
				}
				return false, err
			}
			return true, nil
		}
	}
	if sess != nil {
		defer func() {
			// Application.Close quits the session on the normal path;
			// this covers setup errors before the app owns it.
			if sess != nil {
				_ = sess.Close()
			}
		}()
	}

	patterns := cfg.Patterns
	if explicitPattern != "" {
		patterns = append([]string{explicitPattern}, patterns...)
	}

	pat, idx, err := sequence.Pick(patterns, target.FileName, cfg.ProbeRadius, exists)
	if err != nil {
		return fmt.Errorf("matching %s: %w", target.FileName, err)
	}
	logger.Info("sequence detected",
		zap.String("pattern", pat.String()),
		zap.Uint64("index", idx))

	if cfg.AddPattern(pat.String()) {
		if err := config.Save(configPath, cfg); err != nil {
			logger.Warn("persisting pattern", zap.Error(err))
		}
	}

	addr := sequence.Address{Pattern: pat, Dir: target.Dir, Index: idx}

	var src source.Source
	workers := localWorkers
	if sess != nil {
		// One worker keeps remote commands strictly one at a time.
		src = source.NewRemote(&addr, sess)
		workers = 1
	} else {
		src = source.NewLocal(&addr)
	}

	if radius == 0 {
		radius = uint64(cfg.CacheRadius)
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	app, err := apppkg.NewApplication(apppkg.Options{
		Addr:        addr,
		Source:      src,
		Session:     sess,
		CacheRadius: radius,
		Workers:     workers,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	sess = nil // app owns the session now

	app.Run()
	return app.Close()
}

func printConfig(path string) error {
	fmt.Println(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("(no config file yet; defaults in effect)")
			return nil
		}
		return err
	}
	os.Stdout.Write(data)
	return nil
}
