package util

import (
	"encoding/json"
	"fmt"
)

// VcapServices is a parsed VCAP_SERVICES JSON configuration, keyed by service label
type VcapServices map[string][]VcapService

// VcapService is a single bound service; only the fields used here are parsed
type VcapService struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Credentials VcapCredentials `json:"credentials"`
}

// VcapCredentials is the free-form credentials block of a bound service
type VcapCredentials map[string]interface{}

// ParseVcapServices parses raw VCAP_SERVICES JSON
func ParseVcapServices(data []byte) (VcapServices, error) {
	services := VcapServices{}
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("invalid VCAP_SERVICES: %w", err)
	}
	return services, nil
}

// FindServiceByName finds a service by its instance name under any label
func (s VcapServices) FindServiceByName(name string) *VcapService {
	for _, serviceArray := range s {
		for i := range serviceArray {
			if serviceArray[i].Name == name {
				return &serviceArray[i]
			}
		}
	}
	return nil
}

// GetServiceNames lists the instance names of every bound service
func (s VcapServices) GetServiceNames() []string {
	names := []string{}
	for _, serviceArray := range s {
		for _, service := range serviceArray {
			names = append(names, service.Name)
		}
	}
	return names
}

// ConnectionURI returns the "uri" credential of the named service
func (s VcapServices) ConnectionURI(serviceName string) (string, error) {
	service := s.FindServiceByName(serviceName)
	if service == nil {
		return "", fmt.Errorf("service %q not found; available services: %v", serviceName, s.GetServiceNames())
	}
	return service.Credentials.String("uri")
}

// String recovers the value at the given key, assuming it is a string
func (c VcapCredentials) String(key string) (string, error) {
	val, ok := c[key]
	if !ok {
		return "", fmt.Errorf("credential key does not exist: %s", key)
	}
	valStr, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("could not convert value to string: key=%s, value=%v", key, val)
	}
	return valStr, nil
}
