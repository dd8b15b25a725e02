package smtp_client

import (
	"crypto/tls"
	"log/slog"
	"net/smtp"
	"strconv"
	"time"

	"github.com/knadh/smtppool"
)

// smtpConnection keeps a pool together with the server definition it was
// built from; servers that fail to connect drop out of the rotation, so the
// two must not be tracked in separate lists.
type smtpConnection struct {
	server SmtpServer
	pool   *smtppool.Pool
}

type SmtpClients struct {
	servers        SmtpServerList
	connectionPool []smtpConnection
	counter        int
}

func NewSmtpClients(config SmtpServerList) (*SmtpClients, error) {
	sc := &SmtpClients{
		servers:        config,
		counter:        0,
		connectionPool: initConnectionPool(config),
	}
	return sc, nil
}

func initConnectionPool(serverList SmtpServerList) []smtpConnection {
	connections := []smtpConnection{}
	for _, server := range serverList.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool", slog.String("error", err.Error()), slog.String("server", server.Address()))
			continue
		}
		connections = append(connections, smtpConnection{server: server, pool: pool})
	}
	return connections
}

func connectToPool(server SmtpServer) (*smtppool.Pool, error) {
	auth := smtp.PlainAuth(
		"",
		server.AuthData.Username,
		server.AuthData.Password,
		server.Host,
	)
	if server.AuthData.Username == "" && server.AuthData.Password == "" {
		auth = nil
	}

	tlsOpts := &tls.Config{
		InsecureSkipVerify: server.InsecureSkipVerify,
		ServerName:         server.Host,
	}
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, err
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        server.Connections,
		IdleTimeout:     time.Duration(server.SendTimeout) * time.Second,
		PoolWaitTimeout: time.Duration(server.SendTimeout) * time.Second,
		TLSConfig:       tlsOpts,
		Auth:            auth,
	})
	return pool, err
}
