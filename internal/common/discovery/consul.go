package discovery

import (
	"fmt"

	"github.com/hashicorp/consul/api"
)

// NewConsulClient 创建 Consul 客户端。
func NewConsulClient(host string, port int) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)
	return api.NewClient(config)
}

// ServiceRegistry Consul 服务注册（HTTP 健康检查）。
type ServiceRegistry struct {
	client    *api.Client
	serviceID string
	service   string
	address   string
	port      int
	tags      []string
	check     *api.AgentServiceCheck
}

// NewServiceRegistry 创建服务注册器。healthPath 为健康检查路径（如 /healthz）。
func NewServiceRegistry(client *api.Client, serviceID, service, address string, port int, healthPath string, tags []string) *ServiceRegistry {
	return &ServiceRegistry{
		client:    client,
		serviceID: serviceID,
		service:   service,
		address:   address,
		port:      port,
		tags:      tags,
		check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", address, port, healthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register 注册服务。
func (r *ServiceRegistry) Register() error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.service,
		Tags:    r.tags,
		Address: r.address,
		Port:    r.port,
		Check:   r.check,
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister 注销服务。
func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}

// ResolveHealthy 查询一个服务当前健康的实例地址（host:port 列表）。
// 网关侧轮询选址用；不做本地缓存，调用方自行控制频率。
func ResolveHealthy(client *api.Client, service string) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("consul client is nil")
	}
	entries, _, err := client.Health().Service(service, "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query consul for service=%s: %w", service, err)
	}

	addrs := make([]string, 0, len(entries))
	for _, e := range entries {
		addr := e.Service.Address
		if addr == "" {
			addr = e.Node.Address
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", addr, e.Service.Port))
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no healthy instances for service=%s", service)
	}
	return addrs, nil
}
