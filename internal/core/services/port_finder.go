package services

import (
	"fmt"
	"net"
)

// ListenAvailable binds the first free loopback port in [startPort, endPort].
// The returned listener stays open so the port cannot be taken between
// probing and serving.
func ListenAvailable(startPort, endPort int) (net.Listener, int, error) {
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return listener, port, nil
		}
	}
	return nil, 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
