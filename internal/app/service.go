// Package app holds the use cases of the translator: provider routing,
// smart translation, speech, OCR, conversations, groups and history.
//
// Services depend on port interfaces only. Adapters are chosen and wired by
// the CLI, and the HTTP layer calls the services through the Services bundle.
//
// What does NOT belong here:
//   - HTTP or CLI specifics (that's adapters and cli)
//   - provider wire formats (that's the anti-corruption layer)
//   - SQL (that's the storage adapters)
package app

// Services bundles the use cases exposed to the transports. Speech, OCR and
// Smart may be nil when their providers are not configured.
type Services struct {
	Translation   *TranslationService
	Smart         *SmartService
	Speech        *SpeechService
	OCR           *OCRService
	Conversations *ConversationService
	Groups        *GroupService
	History       *HistoryService
}
