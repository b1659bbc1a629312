// Package cli implements the lxdinv command, an Ansible dynamic inventory
// for LXD.
//
// # Overview
//
// Ansible runs inventory scripts with --list and, for hosts missing from
// _meta, with --host <name>. lxdinv answers both from one or more LXD
// endpoints described in lxd_inventory.yml, applying the configured
// filters and any command-line overrides.
//
// # Modes
//
// list - Full inventory document:
//
//	lxdinv --list [--yaml] [--output FILE]
//
// Prints groups, hosts and _meta.hostvars for every included instance.
//
// host - Variables of one host:
//
//	lxdinv --host web1
//
// Prints the hostvars of the host, or {} when it is not in the inventory.
//
// serve - Inventory over HTTP:
//
//	lxdinv serve [--address ADDR] [--port 8080]
//
// Serves GET /v1/inventory and GET /v1/hosts/{name}, built fresh per
// request, plus /health, /ready and /metrics.
//
// snapshot - Capture one endpoint:
//
//	lxdinv snapshot --endpoint prod [-o prod.yaml]
//
// Writes the raw instances of the endpoint in the form file:// endpoints
// read, so the inventory can be built offline.
//
// # Filter Flags
//
//	--status        running,stopped,frozen,error or all
//	--type          container,virtual-machine (vm, lxc) or all
//	--project       project names; --all-projects selects every project
//	--profile       name or project/name; an instance needs one of them
//	--tag           key, key=value or key!=value (repeatable)
//	--ignore-interface, --prefer-ipv6, --hostname-format
//
// Command-line filters replace the configured value for every endpoint.
//
// # Runtime Flags
//
//	--config, -c    configuration file (env LXD_INVENTORY_CONFIG)
//	--endpoint      endpoints to query, in order
//	--format, -t    json (default) or yaml; --yaml is a shorthand
//	--output, -o    output file (default: stdout)
//	--log-level     debug, info, warn, error (env LOG_LEVEL); --debug
//	--strict        exit 2 when any endpoint failed
//	--metrics-file  write Prometheus metrics after the run
//
// # Exit Codes
//
//	0  inventory printed, possibly without failed endpoints
//	1  configuration, usage or fatal error; nothing on stdout
//	2  --strict and at least one endpoint failed; inventory still printed
//
// Diagnostics are structured JSON logs on stderr.
package cli
