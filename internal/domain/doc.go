// Package domain contains the core types shared by the stores, services and API:
// accessibility preferences, screening results, chats and messages.
package domain
