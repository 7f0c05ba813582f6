// Package main provides a simple CLI client for chatting with the assistant
// over the WebSocket relay.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MariaBraganca/immobyte/internal/protocol"
)

// Client represents a WebSocket chat client.
type Client struct {
	conn *websocket.Conn
	done chan struct{}
}

// NewClient connects to the relay with the given auth token.
func NewClient(addr, token string) (*Client, error) {
	url := addr
	if token != "" {
		url = addr + "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendMessage sends one message envelope to the relay.
func (c *Client) SendMessage(content string) error {
	return c.conn.WriteJSON(map[string]string{"message": content})
}

// ReadEvents reads and prints chat events from the relay.
func (c *Client) ReadEvents() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var event protocol.ChatEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}

			fmt.Printf("\n[%s] %s\n> ", event.Sender, event.Message)
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws/chat", "WebSocket relay address")
	token := flag.String("token", "", "Auth token")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr, *token)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected.")
	fmt.Println("Type a message and press Enter to send.")
	fmt.Println("Commands: /quit to exit")
	fmt.Println()

	// Start reading events in background
	go client.ReadEvents()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Read user input
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			if input == "/quit" {
				fmt.Println("Bye!")
				return
			}

			if err := client.SendMessage(input); err != nil {
				log.Printf("Send error: %v", err)
				continue
			}
		}
	}
}
