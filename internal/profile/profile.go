package profile

import (
	"net"
	"strconv"
)

// Profile is a named connection profile owned by the backend. This layer only
// reads profiles; it never creates or edits them.
type Profile struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Server
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	Key  string `json:"key" yaml:"key"`

	// SOCKS5 listener
	SocksListen string `json:"socks_listen,omitempty" yaml:"socks_listen,omitempty"`
	SocksUser   string `json:"socks_user,omitempty" yaml:"socks_user,omitempty"`
	SocksPass   string `json:"socks_pass,omitempty" yaml:"socks_pass,omitempty"`

	// KCP transport
	Mode  string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Conn  int    `json:"conn,omitempty" yaml:"conn,omitempty"`
	MTU   int    `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Block string `json:"block,omitempty" yaml:"block,omitempty"`

	RcvWnd int `json:"rcvwnd,omitempty" yaml:"rcvwnd,omitempty"`
	SndWnd int `json:"sndwnd,omitempty" yaml:"sndwnd,omitempty"`

	// FEC shards
	DShard int `json:"dshard,omitempty" yaml:"dshard,omitempty"`
	PShard int `json:"pshard,omitempty" yaml:"pshard,omitempty"`

	DSCP int `json:"dscp,omitempty" yaml:"dscp,omitempty"`

	// Buffers
	SmuxBuf   int `json:"smuxbuf,omitempty" yaml:"smuxbuf,omitempty"`
	StreamBuf int `json:"streambuf,omitempty" yaml:"streambuf,omitempty"`
	TCPBuf    int `json:"tcpbuf,omitempty" yaml:"tcpbuf,omitempty"`
	UDPBuf    int `json:"udpbuf,omitempty" yaml:"udpbuf,omitempty"`
	SockBuf   int `json:"sockbuf,omitempty" yaml:"sockbuf,omitempty"`

	// TCP flags
	LocalFlag  string `json:"local_flag,omitempty" yaml:"local_flag,omitempty"`
	RemoteFlag string `json:"remote_flag,omitempty" yaml:"remote_flag,omitempty"`

	Forward []string `json:"forward,omitempty" yaml:"forward,omitempty"`

	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	SystemProxy bool `json:"system_proxy,omitempty" yaml:"system_proxy,omitempty"`
}

// Endpoint returns host:port of the remote server.
func (p Profile) Endpoint() string {
	if p.Port == 0 {
		return p.Host
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// DisplayName falls back to the endpoint when the profile has no name.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Host != "" {
		return p.Endpoint()
	}
	return p.ID
}

// Clone returns a deep copy so callers cannot alias the registry's slices.
func (p Profile) Clone() Profile {
	cp := p
	if p.Forward != nil {
		cp.Forward = append([]string(nil), p.Forward...)
	}
	return cp
}

// CloneAll deep-copies a profile list. A nil input yields an empty, non-nil slice.
func CloneAll(in []Profile) []Profile {
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
