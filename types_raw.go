package tikrelay

import "time"

// Primary provider (tikwm-style) envelope and payload. Field names match
// the provider JSON exactly.

type wmEnvelope struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data *wmVideo `json:"data"`
}

type wmVideo struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Duration     int      `json:"duration"`
	Author       wmAuthor `json:"author"`
	PlayCount    int      `json:"play_count"`
	DiggCount    int      `json:"digg_count"`
	CommentCount int      `json:"comment_count"`
	ShareCount   int      `json:"share_count"`
	CreateTime   int64    `json:"create_time"`
	Play         string   `json:"play"`
	Music        string   `json:"music"`
	Cover        string   `json:"cover"`
	OriginCover  string   `json:"origin_cover"`
	DynamicCover string   `json:"dynamic_cover"`
}

type wmAuthor struct {
	UniqueID string `json:"unique_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Alternate provider (tikmate-style) envelope. A different shape entirely;
// remapped into the same public type.

type altEnvelope struct {
	Success bool      `json:"success"`
	Data    *altVideo `json:"data"`
}

type altVideo struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Duration int       `json:"duration"`
	Author   altAuthor `json:"author"`
	Stats    altStats  `json:"stats"`
	Created  int64     `json:"created_at"`
	VideoURL string    `json:"video_url"`
	AudioURL string    `json:"audio_url"`
	Thumb    string    `json:"thumbnail"`
}

type altAuthor struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type altStats struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// SSR (Server-Side Rendered) structs for the __UNIVERSAL_DATA_FOR_REHYDRATION__
// block embedded in TikTok video pages.

type universalData struct {
	DefaultScope defaultScope `json:"__DEFAULT_SCOPE__"`
}

type defaultScope struct {
	VideoDetail videoDetailWrapper `json:"webapp.video-detail"`
}

type videoDetailWrapper struct {
	ItemInfo   rawItemInfo `json:"itemInfo"`
	StatusCode int         `json:"statusCode"`
}

type rawItemInfo struct {
	ItemStruct rawItem `json:"itemStruct"`
}

type rawItem struct {
	ID         string       `json:"id"`
	Desc       string       `json:"desc"`
	CreateTime int64        `json:"createTime"`
	Author     rawAuthor    `json:"author"`
	Stats      rawStats     `json:"stats"`
	Video      rawItemVideo `json:"video"`
	Music      rawItemMusic `json:"music"`
}

type rawAuthor struct {
	UniqueID    string `json:"uniqueId"`
	Nickname    string `json:"nickname"`
	AvatarThumb string `json:"avatarThumb"`
}

type rawStats struct {
	PlayCount    int `json:"playCount"`
	DiggCount    int `json:"diggCount"`
	CommentCount int `json:"commentCount"`
	ShareCount   int `json:"shareCount"`
}

type rawItemVideo struct {
	PlayAddr     string `json:"playAddr"`
	Cover        string `json:"cover"`
	OriginCover  string `json:"originCover"`
	DynamicCover string `json:"dynamicCover"`
	Duration     int    `json:"duration"`
}

type rawItemMusic struct {
	PlayURL string `json:"playUrl"`
}

// parseWMVideo converts a primary-provider payload to the public type.
func parseWMVideo(raw wmVideo) VideoMetadata {
	return VideoMetadata{
		ID:       raw.ID,
		Title:    raw.Title,
		Duration: raw.Duration,
		Author: Author{
			Username:  raw.Author.UniqueID,
			Nickname:  raw.Author.Nickname,
			AvatarURL: raw.Author.Avatar,
		},
		Stats: Stats{
			Views:    raw.PlayCount,
			Likes:    raw.DiggCount,
			Comments: raw.CommentCount,
			Shares:   raw.ShareCount,
		},
		CreatedAt: time.Unix(raw.CreateTime, 0),
		VideoURL:  raw.Play,
		AudioURL:  raw.Music,
		Thumbnails: Thumbnails{
			Cover:        raw.Cover,
			OriginCover:  raw.OriginCover,
			DynamicCover: raw.DynamicCover,
		},
	}
}

// parseAltVideo converts an alternate-provider payload to the public type.
// The alternate API serves a single thumbnail, so all three variants get it.
func parseAltVideo(raw altVideo) VideoMetadata {
	return VideoMetadata{
		ID:       raw.ID,
		Title:    raw.Title,
		Duration: raw.Duration,
		Author: Author{
			Username:  raw.Author.Username,
			Nickname:  raw.Author.Nickname,
			AvatarURL: raw.Author.Avatar,
		},
		Stats: Stats{
			Views:    raw.Stats.Views,
			Likes:    raw.Stats.Likes,
			Comments: raw.Stats.Comments,
			Shares:   raw.Stats.Shares,
		},
		CreatedAt: time.Unix(raw.Created, 0),
		VideoURL:  raw.VideoURL,
		AudioURL:  raw.AudioURL,
		Thumbnails: Thumbnails{
			Cover:        raw.Thumb,
			OriginCover:  raw.Thumb,
			DynamicCover: raw.Thumb,
		},
	}
}

// parseSSRItem converts an SSR item struct to the public type.
func parseSSRItem(raw rawItem) VideoMetadata {
	return VideoMetadata{
		ID:       raw.ID,
		Title:    raw.Desc,
		Duration: raw.Video.Duration,
		Author: Author{
			Username:  raw.Author.UniqueID,
			Nickname:  raw.Author.Nickname,
			AvatarURL: raw.Author.AvatarThumb,
		},
		Stats: Stats{
			Views:    raw.Stats.PlayCount,
			Likes:    raw.Stats.DiggCount,
			Comments: raw.Stats.CommentCount,
			Shares:   raw.Stats.ShareCount,
		},
		CreatedAt: time.Unix(raw.CreateTime, 0),
		VideoURL:  raw.Video.PlayAddr,
		AudioURL:  raw.Music.PlayURL,
		Thumbnails: Thumbnails{
			Cover:        raw.Video.Cover,
			OriginCover:  raw.Video.OriginCover,
			DynamicCover: raw.Video.DynamicCover,
		},
	}
}
