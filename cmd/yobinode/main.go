// Package main provides yobinode, the node daemon: start, status and
// stop subcommands over a local RPC listener (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/config"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/node"
	"github.com/yobicash/yobinode/internal/rpc"
	"github.com/yobicash/yobinode/internal/rpcenvelope"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
	"github.com/yobicash/yobinode/pkg/logging"
)

const version = "0.1.0-dev"

// defaultPort is arbitrary; it has no protocol meaning beyond being the
// node's out-of-the-box RPC listen port.
const defaultPort = 9876

const pidFileName = "yobinode.pid"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "start":
		cmdStart(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "stop":
		cmdStop(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: yobinode <start|status|stop> [flags]")
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func commonFlags(fs *flag.FlagSet) (dir *string, host *string, port *int, verbose *bool) {
	dir = fs.String("C", "", "config directory (default: ~/.yobicash)")
	fs.StringVar(dir, "config", "", "config directory (default: ~/.yobicash)")
	host = fs.String("H", "", "RPC host override")
	fs.StringVar(host, "host", "", "RPC host override")
	port = fs.Int("p", 0, "RPC port override")
	fs.IntVar(port, "port", 0, "RPC port override")
	verbose = fs.Bool("v", false, "verbose logging")
	fs.BoolVar(verbose, "verbose", false, "verbose logging")
	return
}

func cmdStart(args []string) {
	fs := newFlagSet("start")
	dir, host, port, verbose := commonFlags(fs)
	light := fs.Bool("light", false, "run without the in-memory read-through cache (applies when a new config is bootstrapped; an existing config's light_mode is kept)")
	temporary := fs.Bool("temporary", false, "use an anonymous temporary store, discarded on exit")
	mine := fs.String("mine", "", "mine the genesis coinbase at startup if the chain is empty, at this PoW difficulty increment")
	passwordFlag := fs.String("password", "", "node password (overrides an interactively-bootstrapped default; must be >=16 chars)")
	fs.Parse(args)

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logging.New(&logging.Config{Level: level, TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	var n *node.Node
	var storeDir string
	var err error

	if *temporary {
		password := *passwordFlag
		if password == "" {
			password = defaultTemporaryPassword()
		}
		n, err = node.OpenTemporary(&config.Config{Password: password, MaxConns: config.DefaultMaxConns})
		if err != nil {
			log.Fatal("failed to open temporary node", "error", err)
		}
	} else {
		storeDir, err = config.Dir(*dir)
		if err != nil {
			log.Fatal("failed to resolve config directory", "error", err)
		}
		password := *passwordFlag
		if password == "" {
			password = defaultTemporaryPassword()
		}
		defaultCfg := &config.Config{
			Password:  password,
			LightMode: *light,
			Host:      codec.Host{IP: [4]byte{127, 0, 0, 1}, Port: defaultPort},
			MaxConns:  config.DefaultMaxConns,
		}
		n, err = node.Open(storeDir, defaultCfg)
		if err != nil {
			log.Fatal("failed to open node", "error", err)
		}
		writePIDFile(storeDir)
		defer removePIDFile(storeDir)
	}
	defer n.Close()

	info, err := n.Info()
	if err != nil {
		log.Fatal("failed to read node info", "error", err)
	}
	addr := rpcAddr(info.Config.Host, *host, *port)

	if *mine != "" {
		if info.CoinbasesCount == 0 {
			maybeMineGenesis(log, n, *mine)
		} else {
			log.Info("chain already has coinbases, skipping genesis mine")
		}
	}

	srv := rpc.NewServer(n, info.Config.MaxConns)
	if err := srv.Start(addr); err != nil {
		log.Fatal("failed to start rpc server", "error", err)
	}

	log.Info("yobinode started", "version", version, "addr", addr, "light_mode", info.Config.LightMode)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	if err := srv.Stop(); err != nil {
		log.Error("error stopping rpc server", "error", err)
	}
}

func maybeMineGenesis(log *logging.Logger, n *node.Node, difficultyArg string) {
	increment, err := strconv.ParseUint(difficultyArg, 10, 32)
	if err != nil {
		log.Error("invalid --mine difficulty", "error", err)
		return
	}
	if _, err := n.CreateWallet("default"); err != nil && yerrors.KindOf(err) != yerrors.AlreadyFound {
		log.Error("failed to create default wallet", "error", err)
		return
	}
	_, feePK, err := ycrypto.GenerateKeypair()
	if err != nil {
		log.Error("failed to generate fee keypair", "error", err)
		return
	}
	cb, tx, tries, err := n.MineGenesys("default", uint32(increment), feePK)
	if err != nil {
		log.Error("failed to mine genesis", "error", err)
		return
	}
	log.Info("mined genesis coinbase", "tries", tries, "coinbase", cb.ID, "transaction", tx.ID)
}

func cmdStatus(args []string) {
	fs := newFlagSet("status")
	dir, host, port, _ := commonFlags(fs)
	fs.Parse(args)

	storeDir, err := config.Dir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "IO: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(config.Path(storeDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", yerrors.KindOf(err), err)
		os.Exit(1)
	}
	addr := rpcAddr(cfg.Host, *host, *port)

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		fmt.Println("not running")
		os.Exit(1)
	}
	defer conn.Close()

	if err := pingOnce(conn); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", yerrors.KindOf(err), err)
		os.Exit(1)
	}
	fmt.Printf("running, addr=%s\n", addr)
}

func cmdStop(args []string) {
	fs := newFlagSet("stop")
	dir, _, _, _ := commonFlags(fs)
	fs.Parse(args)

	storeDir, err := config.Dir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "IO: %v\n", err)
		os.Exit(1)
	}
	pid, err := readPIDFile(storeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "IO: no running daemon found for %s\n", storeDir)
		os.Exit(1)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "IO: %v\n", err)
		os.Exit(1)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(os.Stderr, "IO: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("stop signal sent")
}

func pingOnce(conn net.Conn) error {
	payload, err := rpcenvelope.PingRequest{}.MarshalBinary()
	if err != nil {
		return err
	}
	e := rpcenvelope.New(model.CurrentVersion, codec.Time(time.Now().Unix()), 1, rpcenvelope.MethodPing, payload)
	eb, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if err := rpcenvelope.WriteFrame(conn, &rpcenvelope.Frame{Status: rpcenvelope.StatusRequest, Method: rpcenvelope.MethodPing, Payload: eb}); err != nil {
		return err
	}
	_, err = rpcenvelope.ReadFrame(conn)
	return err
}

func rpcAddr(cfgHost codec.Host, hostOverride string, portOverride int) string {
	h := cfgHost.String()
	p := int(cfgHost.Port)
	if hostOverride != "" {
		h = hostOverride
	}
	if portOverride != 0 {
		p = portOverride
	}
	if p == 0 {
		p = defaultPort
	}
	return net.JoinHostPort(h, strconv.Itoa(p))
}

func writePIDFile(dir string) {
	_ = os.WriteFile(filepath.Join(dir, pidFileName), []byte(strconv.Itoa(os.Getpid())), 0600)
}

func removePIDFile(dir string) {
	_ = os.Remove(filepath.Join(dir, pidFileName))
}

func readPIDFile(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, pidFileName))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// defaultTemporaryPassword satisfies config.MinPasswordLength for
// --temporary runs and first-time bootstraps where the operator has
// not supplied one; the store it derives a key for is freshly created,
// so there is nothing yet at risk from using a placeholder.
func defaultTemporaryPassword() string {
	return "changeme-please-16chars"
}
