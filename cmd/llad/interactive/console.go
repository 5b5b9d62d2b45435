// Package interactive provides the interactive console of llad.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lla-project/llad/pkg/daemon"
	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
)

// Daemon is the part of the daemon the console drives.
type Daemon interface {
	PluginInfo(ctx context.Context) ([]plugin.PluginInfo, error)
	DeviceInfo(ctx context.Context, filter pluginid.ID) ([]*device.DeviceInfo, error)
	PortInfo(ctx context.Context, pluginID pluginid.ID, deviceID uint) ([]port.PortInfo, error)
	UniverseInfo(ctx context.Context) ([]daemon.UniverseInfo, error)
	Patch(ctx context.Context, pluginID pluginid.ID, deviceID, portID, universeID uint) error
	Unpatch(ctx context.Context, pluginID pluginid.ID, deviceID, portID uint) error
	SetUniverseName(ctx context.Context, universeID uint, name string) error
	SendDMX(ctx context.Context, universeID uint, buf *dmx.Buffer) error
	ReadDMX(ctx context.Context, universeID uint) (dmx.Buffer, error)
	ReloadPlugins(ctx context.Context) error
}

var _ Daemon = (*daemon.Daemon)(nil)

var errUsage = errors.New("usage")

// Console handles interactive mode for llad.
type Console struct {
	d  Daemon
	rl *readline.Instance
}

// New creates a console reading from the terminal.
func New(d Daemon) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "llad> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{d: d, rl: rl}, nil
}

// Run reads commands until quit, EOF or ctx is done. cancel is called when
// the user quits.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	printHelp(c.rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if quit := Execute(ctx, c.d, c.rl.Stdout(), line); quit {
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs a single command line, writing output to w. It reports
// whether the user asked to quit.
func Execute(ctx context.Context, d Daemon, w io.Writer, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		printHelp(w)
	case "plugins":
		err = cmdPlugins(ctx, d, w)
	case "devices":
		err = cmdDevices(ctx, d, w, args)
	case "ports":
		err = cmdPorts(ctx, d, w, args)
	case "universes", "u":
		err = cmdUniverses(ctx, d, w)
	case "patch":
		err = cmdPatch(ctx, d, w, args)
	case "unpatch":
		err = cmdUnpatch(ctx, d, w, args)
	case "name":
		err = cmdName(ctx, d, w, args)
	case "set":
		err = cmdSet(ctx, d, w, args)
	case "get":
		err = cmdGet(ctx, d, w, args)
	case "reload":
		err = d.ReloadPlugins(ctx)
		if err == nil {
			fmt.Fprintln(w, "Plugins reloaded")
		}
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return false
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  plugins                                 List running plugins
  devices [plugin]                        List devices, optionally of one plugin
  ports <plugin> <device>                 List the ports of a device
  universes                               List universes
  patch <plugin> <device> <port> <univ>   Bind a port to a universe
  unpatch <plugin> <device> <port>        Release a port
  name <univ> <name...>                   Rename a universe
  set <univ> <v1,v2,...>                  Send channel values to a universe
  get <univ>                              Show a universe's channel values
  reload                                  Restart all plugins
  quit                                    Exit`)
}

func parsePlugin(s string) (pluginid.ID, error) {
	if id, ok := pluginid.Parse(s); ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown plugin %q", s)
	}
	return pluginid.ID(n), nil
}

func parseUint(name, s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint(n), nil
}

// parsePortArgs parses "<plugin> <device> <port>".
func parsePortArgs(args []string) (pluginid.ID, uint, uint, error) {
	pluginID, err := parsePlugin(args[0])
	if err != nil {
		return 0, 0, 0, err
	}
	deviceID, err := parseUint("device", args[1])
	if err != nil {
		return 0, 0, 0, err
	}
	portID, err := parseUint("port", args[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return pluginID, deviceID, portID, nil
}

func cmdPlugins(ctx context.Context, d Daemon, w io.Writer) error {
	infos, err := d.PluginInfo(ctx)
	if err != nil {
		return err
	}
	for _, p := range infos {
		fmt.Fprintf(w, "%3d  %-12s %s\n", p.ID, p.Name, p.Description)
	}
	return nil
}

func cmdDevices(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	filter := pluginid.All
	if len(args) > 0 {
		id, err := parsePlugin(args[0])
		if err != nil {
			return err
		}
		filter = id
	}

	infos, err := d.DeviceInfo(ctx, filter)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, "No devices")
		return nil
	}
	for _, dev := range infos {
		fmt.Fprintf(w, "%s/%d  %s (%d ports)\n", pluginid.ID(dev.PluginID), dev.DeviceID, dev.Name, len(dev.Ports))
	}
	return nil
}

func cmdPorts(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: ports <plugin> <device>", errUsage)
	}
	pluginID, err := parsePlugin(args[0])
	if err != nil {
		return err
	}
	deviceID, err := parseUint("device", args[1])
	if err != nil {
		return err
	}

	infos, err := d.PortInfo(ctx, pluginID, deviceID)
	if err != nil {
		return err
	}
	for _, p := range infos {
		mode := ""
		if p.CanRead {
			mode += "in"
		}
		if p.CanWrite {
			mode += "out"
		}
		binding := "unpatched"
		if p.Bound {
			binding = fmt.Sprintf("universe %d", p.UniverseID)
		}
		fmt.Fprintf(w, "%-10s %-6s %-14s %s\n", p.UniqueID, mode, binding, p.Description)
	}
	return nil
}

func cmdUniverses(ctx context.Context, d Daemon, w io.Writer) error {
	infos, err := d.UniverseInfo(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, "No universes")
		return nil
	}
	for _, u := range infos {
		fmt.Fprintf(w, "%5d  %-20s %3d ch  ports: %s\n", u.ID, u.Name, u.Size, strings.Join(u.Ports, ", "))
	}
	return nil
}

func cmdPatch(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: patch <plugin> <device> <port> <universe>", errUsage)
	}
	pluginID, deviceID, portID, err := parsePortArgs(args)
	if err != nil {
		return err
	}
	universeID, err := parseUint("universe", args[3])
	if err != nil {
		return err
	}

	if err := d.Patch(ctx, pluginID, deviceID, portID, universeID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Patched %s/%d/%d to universe %d\n", pluginID, deviceID, portID, universeID)
	return nil
}

func cmdUnpatch(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: unpatch <plugin> <device> <port>", errUsage)
	}
	pluginID, deviceID, portID, err := parsePortArgs(args)
	if err != nil {
		return err
	}

	if err := d.Unpatch(ctx, pluginID, deviceID, portID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Unpatched %s/%d/%d\n", pluginID, deviceID, portID)
	return nil
}

func cmdName(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: name <universe> <name...>", errUsage)
	}
	universeID, err := parseUint("universe", args[0])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")

	if err := d.SetUniverseName(ctx, universeID, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Universe %d is now %q\n", universeID, name)
	return nil
}

// parseFrame parses channel values separated by commas or spaces.
func parseFrame(args []string) (*dmx.Buffer, error) {
	fields := strings.FieldsFunc(strings.Join(args, ","), func(r rune) bool { return r == ',' })

	if len(fields) > dmx.UniverseSize {
		return nil, dmx.ErrFrameTooLarge
	}
	data := make([]byte, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid channel value %q", f)
		}
		data = append(data, byte(v))
	}
	return dmx.NewBuffer(data), nil
}

func cmdSet(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: set <universe> <v1,v2,...>", errUsage)
	}
	universeID, err := parseUint("universe", args[0])
	if err != nil {
		return err
	}
	frame, err := parseFrame(args[1:])
	if err != nil {
		return err
	}

	if err := d.SendDMX(ctx, universeID, frame); err != nil {
		return err
	}
	fmt.Fprintf(w, "Sent %d channels to universe %d\n", frame.Size(), universeID)
	return nil
}

func cmdGet(ctx context.Context, d Daemon, w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get <universe>", errUsage)
	}
	universeID, err := parseUint("universe", args[0])
	if err != nil {
		return err
	}

	frame, err := d.ReadDMX(ctx, universeID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Universe %d (%d channels): %s\n", universeID, frame.Size(), frame.String())
	return nil
}
