// Package config loads the page manifest of a uniroute project.
//
// The manifest lives in uniroute.json at the project root and mirrors the
// page registration file of the page runtime: the pages an app may open,
// the subset shown in the tab bar, and limits applied by the in-memory and
// bridged hosts.
//
// # Configuration File Structure
//
//	{
//	  "pages": [
//	    {"path": "pages/home/index"},
//	    {"path": "pages/detail/index"},
//	    {"path": "pages/mine/index"}
//	  ],
//	  "tabBar": {
//	    "list": [
//	      {"pagePath": "pages/home/index", "text": "Home"},
//	      {"pagePath": "pages/mine/index", "text": "Me"}
//	    ]
//	  },
//	  "entryPagePath": "pages/home/index",
//	  "maxPages": 10,
//	  "server": {"addr": ":8790"},
//	  "metrics": {"namespace": "uniroute"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Entry:", cfg.EntryPage())
package config
