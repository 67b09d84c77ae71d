// Package config provides configuration parsing for routemount projects.
//
// The configuration is stored in routemount.json (or routemount.yaml) next
// to the route tree. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "routes": {
//	    "root": "./routes",
//	    "basePath": "/api",
//	    "filter": ".route.js",
//	    "extension": ".js"
//	  },
//	  "serve": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "metricsPath": "/metrics"
//	  },
//	  "s3": {
//	    "bucket": "my-site",
//	    "prefix": "routes",
//	    "region": "eu-west-1"
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
//	routes, err := router.Scan(ctx, cfg.Spec(cfg.Dir()))
package config
