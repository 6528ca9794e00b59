package ui

import tele "gopkg.in/telebot.v4"

// PhotoFromFileID builds a sendable photo message from a stored Telegram
// file id with an optional caption.
func PhotoFromFileID(fileID, caption string) *tele.Photo {
	return &tele.Photo{
		File:    tele.File{FileID: fileID},
		Caption: caption,
	}
}

// HTMLOptions returns send options with HTML parse mode and the given markup.
func HTMLOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
}
