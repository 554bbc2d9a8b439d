// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

// Platform bridge bodies (0xB0-0xB3). Bridges link Botcash addresses to
// identities on external platforms (Telegram, Discord, Nostr, Mastodon,
// Twitter) and cross-post content from them.

// BridgeLink links an external platform identity to the sender's address.
// Layout: [platform:len8][platform_id:len8][challenge:32]
type BridgeLink struct {
	Platform   string
	PlatformID string
	Challenge  string
}

func (BridgeLink) Kind() MessageType { return TypeBridgeLink }

func (b BridgeLink) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(b.Platform), &out)
	putBytes8([]byte(b.PlatformID), &out)
	putHex32(b.Challenge, &out)
	return out
}

func parseBridgeLink(payload []byte) (BridgeLink, error) {
	r := newPayloadReader(payload)
	b := BridgeLink{
		Platform:   r.string8(),
		PlatformID: r.string8(),
		Challenge:  r.hex32(),
	}
	return b, r.done()
}

// BridgeUnlink removes a platform identity link.
// Layout: [platform:len8][platform_id:len8]
type BridgeUnlink struct {
	Platform   string
	PlatformID string
}

func (BridgeUnlink) Kind() MessageType { return TypeBridgeUnlink }

func (b BridgeUnlink) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(b.Platform), &out)
	putBytes8([]byte(b.PlatformID), &out)
	return out
}

func parseBridgeUnlink(payload []byte) (BridgeUnlink, error) {
	r := newPayloadReader(payload)
	b := BridgeUnlink{
		Platform:   r.string8(),
		PlatformID: r.string8(),
	}
	return b, r.done()
}

// BridgePost cross-posts content that originated on another platform.
// Layout: [platform:len8][original_id:len8][content:rest]
type BridgePost struct {
	Platform   string
	OriginalID string
	Content    string
}

func (BridgePost) Kind() MessageType { return TypeBridgePost }

func (b BridgePost) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(b.Platform), &out)
	putBytes8([]byte(b.OriginalID), &out)
	out = append(out, b.Content...)
	return out
}

func parseBridgePost(payload []byte) (BridgePost, error) {
	r := newPayloadReader(payload)
	b := BridgePost{
		Platform:   r.string8(),
		OriginalID: r.string8(),
	}
	b.Content = string(r.remaining())
	return b, r.err
}

// BridgeVerify answers a link verification challenge.
// Layout: [platform:len8][platform_id:len8][response:32]
type BridgeVerify struct {
	Platform   string
	PlatformID string
	Response   string
}

func (BridgeVerify) Kind() MessageType { return TypeBridgeVerify }

func (b BridgeVerify) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(b.Platform), &out)
	putBytes8([]byte(b.PlatformID), &out)
	putHex32(b.Response, &out)
	return out
}

func parseBridgeVerify(payload []byte) (BridgeVerify, error) {
	r := newPayloadReader(payload)
	b := BridgeVerify{
		Platform:   r.string8(),
		PlatformID: r.string8(),
		Response:   r.hex32(),
	}
	return b, r.done()
}
