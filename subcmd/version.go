package subcmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/jgathje/framesink/cmdmain"
)

func init() {
	cmdmain.RegisterSubCmd("version", func() cmdmain.SubCmd { return new(version) })
}

type version struct{}

func (v *version) Exec(cmd string, args []string) error {
	path := "github.com/jgathje/framesink"
	ver := "(devel)"
	commit := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		path = info.Main.Path
		ver = info.Main.Version
		modified := false
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				commit = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}
		if modified {
			commit += "+dirty"
		}
	}
	fmt.Fprintf(os.Stdout, `%s
	Version:	%s
	Git commit:	%s
	Go Version:	%s
`, path, ver, commit, runtime.Version())
	return nil
}

func (v *version) Help() string {
	return "Print version information"
}
