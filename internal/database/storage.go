package database

const DB_SCHEMA = `CREATE TABLE users (
	user_id integer PRIMARY KEY,
	username text,
	first_name text,
	last_name text,
	phone text,
	address text,
	created_at timestamp DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE cart (
	id integer PRIMARY KEY AUTOINCREMENT,
	user_id integer,
	product_id text,
	product_name text,
	quantity integer,
	price integer,
	size text,
	color text,
	image text,
	added_at timestamp DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users (user_id)
);

CREATE TABLE orders (
	id integer PRIMARY KEY AUTOINCREMENT,
	user_id integer,
	order_number text UNIQUE,
	status text DEFAULT 'new',
	total_amount integer,
	items text,
	phone text,
	address text,
	created_at timestamp DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users (user_id)
);
`
