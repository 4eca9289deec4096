// File: command/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service directory commands. The directory maps a 128-bit service id to a
// display name; a plain port stands for the matching template id.

package command

import (
	"errors"
	"flag"
	"fmt"

	"github.com/mitchellh/cli"
	"github.com/ryanuber/columnize"

	"github.com/momentics/hioload-framebench/config"
	"github.com/momentics/hioload-framebench/registry"
	"github.com/momentics/hioload-framebench/serviceid"
)

// registryFlags locate the directory file.
type registryFlags struct {
	configPath string
	path       string
}

func (f *registryFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "",
		"Path to a YAML settings file providing registry_path.")
	fs.StringVar(&f.path, "registry", "",
		"Path to the service directory file.")
}

func (f *registryFlags) resolve() (string, error) {
	if f.path != "" {
		return f.path, nil
	}
	file, err := config.Load(f.configPath)
	if err != nil {
		return "", err
	}
	return file.RegistryPath, nil
}

func (f *registryFlags) open(create bool) (*registry.Registry, error) {
	path, err := f.resolve()
	if err != nil {
		return nil, err
	}
	if create {
		return registry.Create(path)
	}
	return registry.Open(path)
}

// NewService returns the "service" parent command.
func NewService() *serviceCmd {
	return &serviceCmd{}
}

type serviceCmd struct{}

func (c *serviceCmd) Run(args []string) int {
	return cli.RunResultHelp
}

func (c *serviceCmd) Synopsis() string {
	return "Manage the host service directory"
}

func (c *serviceCmd) Help() string {
	return usage(`
Usage: framebench service <subcommand> [options] [args]

  Registers, lists, renames and removes entries of the service directory
  that names hypervisor socket services. A service id may be written as a
  plain port number.

  Register port 5000:

      $ framebench service register 5000 "framebench stream"

  List entries:

      $ framebench service list
`, nil)
}

// NewServiceRegister returns "service register".
func NewServiceRegister(ui cli.Ui) *serviceRegisterCmd {
	c := &serviceRegisterCmd{UI: ui}
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.reg.register(c.flags)
	c.help = usage(`
Usage: framebench service register [options] <port|service-id> <name>

  Creates or overwrites a directory entry. The directory file is created
  when missing.
`, c.flags)
	return c
}

type serviceRegisterCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string
	reg   registryFlags
}

func (c *serviceRegisterCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	args = c.flags.Args()
	if len(args) != 2 {
		c.UI.Error("service register requires <port|service-id> <name>")
		return 1
	}
	addr, err := serviceid.Parse(args[0])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	r, err := c.reg.open(true)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening directory: %s", err))
		return 1
	}
	defer r.Close()

	svc, err := r.Register(registry.ServiceData{ID: addr.ID, ElementName: args[1]})
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error registering service: %s", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("Registered %s (%s) as %q", svc.ID(), addr, svc.ElementName()))
	return 0
}

func (c *serviceRegisterCmd) Synopsis() string { return "Register a service id under a name" }
func (c *serviceRegisterCmd) Help() string     { return c.help }

// NewServiceList returns "service list".
func NewServiceList(ui cli.Ui) *serviceListCmd {
	c := &serviceListCmd{UI: ui}
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.reg.register(c.flags)
	c.help = usage(`
Usage: framebench service list [options]

  Prints every directory entry with its decoded port, if any.
`, c.flags)
	return c
}

type serviceListCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string
	reg   registryFlags
}

func (c *serviceListCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	r, err := c.reg.open(false)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening directory: %s", err))
		return 1
	}
	defer r.Close()

	svcs, err := r.List()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error listing services: %s", err))
		return 1
	}
	if len(svcs) == 0 {
		return 0
	}

	lines := []string{"ID|Port|Name"}
	for _, s := range svcs {
		port := "-"
		if a := serviceid.Decode(s.ID()); a.IsPort {
			port = a.String()
		}
		lines = append(lines, fmt.Sprintf("%s|%s|%s", s.ID(), port, s.ElementName()))
	}
	c.UI.Output(columnize.SimpleFormat(lines))
	return 0
}

func (c *serviceListCmd) Synopsis() string { return "List registered services" }
func (c *serviceListCmd) Help() string     { return c.help }

// NewServiceDelete returns "service delete".
func NewServiceDelete(ui cli.Ui) *serviceDeleteCmd {
	c := &serviceDeleteCmd{UI: ui}
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.reg.register(c.flags)
	c.help = usage(`
Usage: framebench service delete [options] <port|service-id>

  Removes a directory entry.
`, c.flags)
	return c
}

type serviceDeleteCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string
	reg   registryFlags
}

func (c *serviceDeleteCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	args = c.flags.Args()
	if len(args) != 1 {
		c.UI.Error("service delete requires <port|service-id>")
		return 1
	}
	addr, err := serviceid.Parse(args[0])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	r, err := c.reg.open(false)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening directory: %s", err))
		return 1
	}
	defer r.Close()

	if err := r.Delete(addr.ID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			c.UI.Error(fmt.Sprintf("No service registered as %s", addr))
		} else {
			c.UI.Error(fmt.Sprintf("Error deleting service: %s", err))
		}
		return 1
	}
	c.UI.Output(fmt.Sprintf("Deleted %s", addr.ID))
	return 0
}

func (c *serviceDeleteCmd) Synopsis() string { return "Delete a registered service" }
func (c *serviceDeleteCmd) Help() string     { return c.help }

// NewServiceRename returns "service rename".
func NewServiceRename(ui cli.Ui) *serviceRenameCmd {
	c := &serviceRenameCmd{UI: ui}
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.reg.register(c.flags)
	c.flags.StringVar(&c.flagName, "name", "",
		"Also change the display name.")
	c.help = usage(`
Usage: framebench service rename [options] <from> <to>

  Moves an entry to a new service id, keeping its display name unless
  -name is given.
`, c.flags)
	return c
}

type serviceRenameCmd struct {
	UI       cli.Ui
	flags    *flag.FlagSet
	help     string
	reg      registryFlags
	flagName string
}

func (c *serviceRenameCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	args = c.flags.Args()
	if len(args) != 2 {
		c.UI.Error("service rename requires <from> <to>")
		return 1
	}
	from, err := serviceid.Parse(args[0])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	to, err := serviceid.Parse(args[1])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	r, err := c.reg.open(false)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening directory: %s", err))
		return 1
	}
	defer r.Close()

	svc, err := r.Rename(from.ID, to.ID)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error renaming service: %s", err))
		return 1
	}
	if c.flagName != "" {
		if _, err := svc.SetElementName(c.flagName); err != nil {
			c.UI.Error(fmt.Sprintf("Error setting name: %s", err))
			return 1
		}
	}
	c.UI.Output(fmt.Sprintf("Renamed %s to %s (%q)", from, to, svc.ElementName()))
	return 0
}

func (c *serviceRenameCmd) Synopsis() string { return "Move a service to a new id" }
func (c *serviceRenameCmd) Help() string     { return c.help }

// NewServiceID returns "service id".
func NewServiceID(ui cli.Ui) *serviceIDCmd {
	c := &serviceIDCmd{UI: ui}
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.help = usage(`
Usage: framebench service id <port|service-id>

  Converts between a port and its template service id. Ids outside the
  template are reported as opaque.
`, c.flags)
	return c
}

type serviceIDCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string
}

func (c *serviceIDCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	args = c.flags.Args()
	if len(args) != 1 {
		c.UI.Error("service id requires <port|service-id>")
		return 1
	}
	addr, err := serviceid.Parse(args[0])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if addr.IsPort {
		c.UI.Output(fmt.Sprintf("%s port %d", addr.ID, addr.Port))
	} else {
		c.UI.Output(fmt.Sprintf("%s opaque", addr.ID))
	}
	return 0
}

func (c *serviceIDCmd) Synopsis() string { return "Convert between ports and service ids" }
func (c *serviceIDCmd) Help() string     { return c.help }
