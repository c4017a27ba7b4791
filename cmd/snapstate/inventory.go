package main

import (
	"github.com/juju/errors"
	"gopkg.in/ini.v1"

	"github.com/steelcutops/snapstate/logger"
	"github.com/steelcutops/snapstate/steelcut/host"
	"github.com/steelcutops/snapstate/steelcut/hostgroup"
)

// readHostsFromFile loads an INI inventory: one section per group, one
// host per key value.
func readHostsFromFile(filePath string) (map[string][]string, error) {
	cfg, err := ini.Load(filePath)
	if err != nil {
		return nil, errors.Annotatef(err, "loading inventory %s", filePath)
	}

	hosts := make(map[string][]string)
	for _, section := range cfg.Sections() {
		name := section.Name()
		for _, key := range section.Keys() {
			hosts[name] = append(hosts[name], key.String())
		}
	}
	return hosts, nil
}

func addHosts(log logger.Logger, hostnames []string, hostGroup *hostgroup.HostGroup, options ...host.HostOption) error {
	for _, hostname := range hostnames {
		log.Debug("Adding host", "host", hostname)
		server, err := host.NewHost(hostname, options...)
		if err != nil {
			return errors.Annotatef(err, "adding host %q", hostname)
		}
		hostGroup.AddHost(server)
	}
	return nil
}

// initializeHosts builds the group from the inventory file and the
// --hostname flags, defaulting to localhost when neither is given. A host
// that cannot be created, or an inventory that names no host, is an error.
func initializeHosts(log logger.Logger, f *flags, options []host.HostOption) (*hostgroup.HostGroup, error) {
	hostGroup := hostgroup.NewHostGroup()

	if f.IniFilePath != "" {
		hostsMap, err := readHostsFromFile(f.IniFilePath)
		if err != nil {
			return nil, err
		}
		for group, hosts := range hostsMap {
			log.Debug("Adding hosts from group", "group", group)
			if err := addHosts(log, hosts, hostGroup, options...); err != nil {
				return nil, errors.Annotatef(err, "inventory group %q", group)
			}
		}
	}
	if len(f.Hostnames) == 0 && f.IniFilePath == "" {
		f.Hostnames = append(f.Hostnames, "localhost")
	}
	if err := addHosts(log, f.Hostnames, hostGroup, options...); err != nil {
		return nil, err
	}

	if len(hostGroup.Hostnames()) == 0 {
		return nil, errors.NotValidf("no hosts to reconcile")
	}
	return hostGroup, nil
}
