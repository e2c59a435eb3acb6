package cloudstore

import (
	"encoding/json"
	"time"

	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
)

// Collection names.
const (
	GamesCollection     = "games"
	LibrariesCollection = "libraries"
)

// Wire field names. These are shared with records written by earlier
// clients and must not change.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldFEN         = "fen"
	fieldRootNode    = "rootNode"
	fieldMetadata    = "metadata"
	fieldOwnerID     = "owner_id"
	fieldIsPublic    = "is_public"
	fieldLibraryID   = "library_id"
	fieldGameCount   = "game_count"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"

	legacyFieldRootNode  = "root_node"
	legacyFieldDate      = "date"
	legacyFieldRedName   = "redName"
	legacyFieldBlackName = "blackName"
)

func gameFromDocument(doc docstore.Document) game.Game {
	f := doc.Fields
	return game.Game{
		ID:        doc.ID,
		Title:     stringField(f, fieldTitle),
		FEN:       stringField(f, fieldFEN),
		Payload:   payloadField(f),
		Metadata:  mapField(f, fieldMetadata),
		OwnerID:   stringField(f, fieldOwnerID),
		IsPublic:  boolField(f, fieldIsPublic),
		LibraryID: optionalString(f, fieldLibraryID),
		CreatedAt: timeField(f, fieldCreatedAt),
		UpdatedAt: timeField(f, fieldUpdatedAt),
		Date:      timeField(f, legacyFieldDate),
		RedName:   stringField(f, legacyFieldRedName),
		BlackName: stringField(f, legacyFieldBlackName),
	}
}

func gameCreateFields(ownerID string, g game.NewGame, isPublic bool, libraryID *string) docstore.Fields {
	var lib any
	if libraryID != nil {
		lib = *libraryID
	}
	metadata := g.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return docstore.Fields{
		fieldTitle:     g.Title,
		fieldFEN:       g.FEN,
		fieldRootNode:  g.Payload,
		fieldMetadata:  metadata,
		fieldOwnerID:   ownerID,
		fieldIsPublic:  isPublic,
		fieldLibraryID: lib,
		fieldCreatedAt: docstore.ServerTimestamp,
		fieldUpdatedAt: docstore.ServerTimestamp,
	}
}

func gameUpdateFields(u game.Update) docstore.Fields {
	fields := docstore.Fields{fieldUpdatedAt: docstore.ServerTimestamp}
	if u.Title != nil {
		fields[fieldTitle] = *u.Title
	}
	if u.FEN != nil {
		fields[fieldFEN] = *u.FEN
	}
	if u.Payload != nil {
		fields[fieldRootNode] = *u.Payload
	}
	if u.Metadata != nil {
		fields[fieldMetadata] = u.Metadata
	}
	if u.IsPublic != nil {
		fields[fieldIsPublic] = *u.IsPublic
	}
	switch {
	case u.Uncategorize:
		fields[fieldLibraryID] = nil
	case u.LibraryID != nil:
		fields[fieldLibraryID] = *u.LibraryID
	}
	return fields
}

func libraryFromDocument(doc docstore.Document) library.Library {
	f := doc.Fields
	count, _ := docstore.AsInt64(f[fieldGameCount])
	return library.Library{
		ID:          doc.ID,
		Title:       stringField(f, fieldTitle),
		Description: stringField(f, fieldDescription),
		OwnerID:     stringField(f, fieldOwnerID),
		IsPublic:    boolField(f, fieldIsPublic),
		GameCount:   int(count),
		CreatedAt:   timeField(f, fieldCreatedAt),
		UpdatedAt:   timeField(f, fieldUpdatedAt),
	}
}

func libraryCreateFields(ownerID string, l library.NewLibrary) docstore.Fields {
	return docstore.Fields{
		fieldTitle:       l.Title,
		fieldDescription: l.Description,
		fieldOwnerID:     ownerID,
		fieldIsPublic:    l.IsPublic,
		fieldGameCount:   0,
		fieldCreatedAt:   docstore.ServerTimestamp,
		fieldUpdatedAt:   docstore.ServerTimestamp,
	}
}

func libraryUpdateFields(u library.Update) docstore.Fields {
	fields := docstore.Fields{fieldUpdatedAt: docstore.ServerTimestamp}
	if u.Title != nil {
		fields[fieldTitle] = *u.Title
	}
	if u.Description != nil {
		fields[fieldDescription] = *u.Description
	}
	if u.IsPublic != nil {
		fields[fieldIsPublic] = *u.IsPublic
	}
	return fields
}

// payloadField reads the encoded tree, falling back to the legacy field
// name. A tree stored as a plain object is re-serialized so the codec sees
// it as a legacy payload.
func payloadField(f docstore.Fields) string {
	for _, name := range []string{fieldRootNode, legacyFieldRootNode} {
		switch v := f[name].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		default:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
	}
	return ""
}

func stringField(f docstore.Fields, name string) string {
	s, _ := f[name].(string)
	return s
}

func optionalString(f docstore.Fields, name string) *string {
	s, ok := f[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func boolField(f docstore.Fields, name string) bool {
	b, _ := f[name].(bool)
	return b
}

func mapField(f docstore.Fields, name string) map[string]any {
	switch m := f[name].(type) {
	case map[string]any:
		return m
	case docstore.Fields:
		return m
	}
	return nil
}

func timeField(f docstore.Fields, name string) time.Time {
	t, _ := docstore.AsTime(f[name])
	return t
}
