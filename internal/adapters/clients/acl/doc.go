// Package acl adapts the HTTP translation and speech providers to the ports
// interfaces. It is the Anti-Corruption Layer between provider wire formats
// and the domain.
//
// Each adapter embeds [BaseAdapter], which owns the shared [clients.Client]
// and maps every provider failure through [MapHTTPError]:
//
//   - 400/413/422 → [domain.ErrValidation]
//   - 404         → [domain.ErrNotFound]
//   - 401/403     → [domain.ErrProviderUnavailable] (bad or missing credentials)
//   - 429/5xx     → [domain.ErrProviderUnavailable]
//   - network errors, open circuits and exhausted retries → [domain.ErrProviderUnavailable]
//
// Errors are always wrapped in [domain.ProviderError] so the caller can tell
// which provider failed while still matching the domain sentinel.
//
// Provider DTOs stay unexported in the adapter files. Adapters:
//
//   - [GoogleAdapter]: keyless gtx endpoint, translate and detect
//   - [MicrosoftAdapter]: Azure Translator v3, translate and detect
//   - [DeepLAdapter]: DeepL v2, translate
//   - [LibreTranslateAdapter]: translate and detect
//   - [MyMemoryAdapter]: translate
//   - [DeepgramAdapter]: prerecorded speech recognition
package acl
