// Package chat runs the bot on Twitch IRC.
//
// Bot joins TWITCH_CHANNEL as TWITCH_BOT_USERNAME using TWITCH_OAUTH_TOKEN
// (chat:read and chat:edit scopes) and hands every line that starts with the
// command prefix to a bot.Handler on its own goroutine. Twitch has no rich
// messages, so replies are flattened by render.PlainText and sent as one or
// more lines of at most MaxMessageBytes. When a mirror replier is configured
// (the Discord webhook), it receives the embed form of the same reply.
// Commands beyond Config.RateLimit per user within Config.RateWindow are
// dropped.
//
// The connection state feeds the bunt_chat_connected gauge and the /readyz
// probe.
package chat
