package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plan-systems/klog"
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	configPath := flag.String("config", "", "YAML file of mesh kernel settings applied to imported meshes")
	startup := flag.String("startup", "lib/_REPL_startup.py", "script run before the interactive prompt when no mesh script is given")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage:\n")
		fmt.Fprintf(out, "  fine-mesh [flags] [script.py]                     run a mesh script, or a prompt with _pymesh\n")
		fmt.Fprintf(out, "  fine-mesh [flags] import <catalog-dir> <file.sm>...  load .sm files into a mesh catalog\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	exitCode := 0
	switch flag.Arg(0) {
	case "import":
		if flag.NArg() < 3 {
			klog.Errorf("usage: fine-mesh import <catalog-dir> <file.sm>...")
			exitCode = 2
			break
		}
		if err := importFiles(*configPath, flag.Arg(1), flag.Args()[2:]); err != nil {
			klog.Errorf("import failed: %v", err)
			exitCode = 1
		}
	default:
		if err := runPython(flag.Arg(0), *startup); err != nil {
			klog.Errorf("%v", err)
			exitCode = 1
		}
	}

	klog.Flush()
	os.Exit(exitCode)
}
