package database

const postgresSchema = `
CREATE TABLE IF NOT EXISTS books (
	book_id   SERIAL PRIMARY KEY,
	title     TEXT NOT NULL,
	author    TEXT NOT NULL,
	pub_date  DATE NOT NULL,
	num_pages INTEGER CHECK (num_pages >= 0)
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	book_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	title     TEXT NOT NULL,
	author    TEXT NOT NULL,
	pub_date  TEXT NOT NULL,
	num_pages INTEGER CHECK (num_pages >= 0)
)`
