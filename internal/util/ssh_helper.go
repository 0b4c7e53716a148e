package util

import (
	"fmt"
	"io"
	"net"

	log "github.com/sirupsen/logrus"
)

// getOutboundIP retrieves the preferred outbound IP address of this machine.
// Dialing UDP only selects a route; no packet is sent.
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warnf("Failed to close UDP connection: %v", closeErr)
		}
	}()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("could not assert UDP address type")
	}
	return localAddr.IP.String(), nil
}

// GetIPAddress returns the outbound IP address, or 127.0.0.1 when it cannot be determined.
func GetIPAddress() string {
	ip, err := getOutboundIP()
	if err != nil {
		log.Debugf("Failed to detect outbound IP: %v", err)
		return "127.0.0.1"
	}
	return ip
}

// PrintSSHTunnelInstructions writes the SSH port-forward commands a user
// needs to reach the loopback callback server from another machine.
//
// Parameters:
//   - w: Where the instructions are written
//   - port: The local callback port
//   - host: The address of this machine as seen by the user
func PrintSSHTunnelInstructions(w io.Writer, port int, host string) {
	border := "================================================================================"
	_, _ = fmt.Fprintln(w, "To authenticate from a remote machine, an SSH tunnel may be required.")
	_, _ = fmt.Fprintln(w, border)
	_, _ = fmt.Fprintln(w, "  Run one of the following commands on your local machine (NOT the server):")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  # Standard SSH command (assumes SSH port 22):\n")
	_, _ = fmt.Fprintf(w, "  ssh -L %d:127.0.0.1:%d <user>@%s -p 22\n", port, port, host)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  # If using an SSH key (assumes SSH port 22):\n")
	_, _ = fmt.Fprintf(w, "  ssh -i <path_to_your_key> -L %d:127.0.0.1:%d <user>@%s -p 22\n", port, port, host)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  NOTE: If your server's SSH port is not 22, please modify the '-p 22' part accordingly.")
	_, _ = fmt.Fprintln(w, border)
}
