package probe

import (
	"fmt"
	"sort"
)

// Factory builds a prober for one service with the supplied options.
type Factory func(opts Options) Prober

var factories = map[string]Factory{
	"ajp":             newAJPProber,
	"amqp":            newAMQPProber,
	"docker_api":      newDockerAPIProber,
	"docker_registry": newDockerRegistryProber,
	"elasticsearch":   newElasticProber,
	"ftp":             newFTPProber,
	"ibm_mq":          newIBMMQProber,
	"jdwp":            newJDWPProber,
	"kerberos":        newKerberosProber,
	"ldap":            newLDAPProber,
	"memcached":       newMemcachedProber,
	"mongodb":         newMongoProber,
	"mqtt":            newMQTTProber,
	"mssql_browser":   newMSSQLBrowserProber,
	"mysql":           newMySQLProber,
	"nats":            newNATSProber,
	"nfs":             newNFSProber,
	"postgres":        newPostgresProber,
	"redis":           newRedisProber,
	"rmi":             newRMIProber,
	"smb":             newSMBProber,
	"smtp":            newSMTPProber,
	"snmp":            newSNMPProber,
	"telnet":          newTelnetProber,
	"vnc":             newVNCProber,
	"weblogic":        newWebLogicProber,
	"winrm":           newWinRMProber,
	"zookeeper":       newZookeeperProber,
}

// New returns a prober for the named service.
func New(service string, opts Options) (Prober, error) {
	factory, ok := factories[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q (see `reconkit enum list`)", service)
	}
	return factory(opts), nil
}

// Services returns all registered service names, sorted.
func Services() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
