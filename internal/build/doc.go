// Package build composes a project's webpack configuration and writes it
// to the output directory.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	switch result.Status {
//	case pipeline.Completed:
//	    fmt.Println("Wrote", result.ConfigPath)
//	case pipeline.RestartNeeded:
//	    fmt.Println("Run the command again")
//	}
//
// # Output Structure
//
//	dist/
//	├── webpack.config.json   # Composed configuration
//	└── manifest.json         # Project, features and configuration hash
package build
