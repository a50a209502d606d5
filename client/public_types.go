package client

import (
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/bulk"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/channel"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/selection"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/store"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.

// Domain entities
type (
	MemoryItem = types.MemoryItem
	Collection = types.Collection
	Pagination = types.Pagination
)

// Requests and responses
type (
	CreateMemoryRequest = types.CreateMemoryRequest
	UpdateMemoryRequest = types.UpdateMemoryRequest
	ExportRequest       = types.ExportRequest
	ListMemoriesParams  = types.ListMemoriesParams
	StatsResponse       = types.StatsResponse
	LoginResponse       = types.LoginResponse
)

// Bulk operations
type (
	BulkRequest       = types.BulkRequest
	BulkResult        = types.BulkResult
	BulkOperationKind = types.BulkOperationKind
	ExportFormat      = types.ExportFormat
	Download          = types.Download
)

const (
	BulkDelete = types.BulkDelete
	BulkTag    = types.BulkTag
	BulkMove   = types.BulkMove
	BulkExport = types.BulkExport

	FormatJSON     = types.FormatJSON
	FormatCSV      = types.FormatCSV
	FormatMarkdown = types.FormatMarkdown
)

// Real-time channel
type (
	ChannelEvent       = types.ChannelEvent
	EventKind          = types.EventKind
	ChannelStatus      = channel.Status
	SubscriptionHandle = channel.SubscriptionHandle
)

const (
	EventItemCreated = types.EventItemCreated
	EventItemUpdated = types.EventItemUpdated
	EventItemDeleted = types.EventItemDeleted
	EventSyncStart   = types.EventSyncStart
	EventSyncEnd     = types.EventSyncEnd

	StatusDisconnected = channel.Disconnected
	StatusConnecting   = channel.Connecting
	StatusConnected    = channel.Connected
	StatusReconnecting = channel.Reconnecting
)

// RoomMemories is the list-scope room; RoomForMemory derives detail rooms.
const RoomMemories = types.RoomMemories

// RoomForMemory returns the detail-scope room for one memory id.
func RoomForMemory(id string) string { return types.RoomForMemory(id) }

// Selection and views
type (
	Selection     = selection.Coordinator
	SelectionMode = selection.Mode
	DetailView    = store.DetailView
	ListFilter    = store.ListFilter
)

const (
	ModeBrowsing  = selection.Browsing
	ModeSelecting = selection.Selecting
)

// Collaborator surfaces
type (
	Notifier     = bulk.Notifier
	DownloadSink = bulk.DownloadSink
)
