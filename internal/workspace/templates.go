package workspace

import "github.com/nexuscloud/nexus/internal/registry"

// Startup-file templates per bot type. Each runs under the configured
// runtime (node by default) and reads its secret from BOT_TOKEN.

const discordTemplate = `
const { Client, GatewayIntentBits } = require('discord.js');
let client;
try {
    client = new Client({ intents: [GatewayIntentBits.Guilds] });
} catch(e) {
    client = { login: (t) => console.log("Virtual Login: " + t), on: () => {} };
}
client.on('ready', () => console.log("Logged in as " + (client.user?.tag || 'VirtualBot') + "!"));
console.log("Starting Discord Bot...");
client.login(process.env.BOT_TOKEN);
setInterval(() => {}, 10000);
`

const telegramTemplate = `
const TelegramBot = require('node-telegram-bot-api');
let bot;
try {
    bot = new TelegramBot(process.env.BOT_TOKEN, {polling: true});
} catch(e) {
    bot = { on: () => {} };
}
console.log("Telegram Bot Polling...");
bot.on('message', (msg) => console.log("Msg from " + msg.chat.id));
setInterval(() => {}, 10000);
`

const genericTemplate = `
console.log("Starting Node Process...");
let i = 0;
setInterval(() => console.log("Tick " + i++), 5000);
`

// Template returns the startup body for a bot type. Unknown types get the
// generic body.
func Template(t registry.BotType) string {
	switch t {
	case registry.TypeDiscord:
		return discordTemplate
	case registry.TypeTelegram:
		return telegramTemplate
	default:
		return genericTemplate
	}
}
