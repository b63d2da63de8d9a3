package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"markpath/internal/config"
	"markpath/internal/server"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

func main() {
	versionFlag := flag.Bool("version", false, "Print the version of the program")
	logfileFlag := flag.String("logfile", "", "Path to log file")
	configFlag := flag.String("config", "", "Path to TOML configuration file")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("markpath LSP server version %s\n", Version)
		return
	}

	runtime.GOMAXPROCS(4)

	// Configuration
	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.LoadFile(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Logging. stdout carries the protocol, so logs go to a file when one
	// is given and to stderr otherwise.
	logfile := *logfileFlag
	if logfile == "" {
		logfile = cfg.LogFile
	}
	if logfile != "" {
		logFile, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
		log.SetFlags(log.Ldate | log.Ltime | log.Llongfile)
		log.Println("Starting markpath LSP server...")
		commonlog.Configure(1, &logfile)
	} else {
		log.SetOutput(io.Discard)
		commonlog.Configure(1, nil)
	}

	// Run the server
	srv := server.NewServer(cfg, Version)
	if err := srv.RunStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
