// Package config provides the configuration inputs of a composition run.
//
// The project file is compose.json at the project root. This package
// handles loading, saving and validating it, and derives from it the
// per-run values features consume: the path Registry, the Environment,
// the Configurables and the Projects.
//
// # Project File Structure
//
//	{
//	  "project": "core",
//	  "features": ["typescript", "vue", "eslint"],
//	  "paths": {
//	    "paths.source": "frontend/src",
//	    "paths.public": "frontend/public"
//	  },
//	  "base": "webpack.base.yaml",
//	  "mergeStrategy": {
//	    "resolve.extensions": "append"
//	  },
//	  "install": {
//	    "packageManager": "npm"
//	  },
//	  "output": "dist",
//	  "publish": {
//	    "bucket": "my-builds",
//	    "prefix": "compose"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reg, err := cfg.Registry()
//	src, err := reg.ProjectPath(config.PathSource, cfg.Project)
package config
