package sqlinline

const QCreateVideoRequests = `--sql 0c6a3f0e-5b7d-4d46-9c3e-7f4a1e2b9d10
create table if not exists video_requests (
  id             uuid primary key,
  prompt         text not null,
  width          int not null,
  height         int not null,
  seconds        int not null,
  model          text not null default '',
  locale         text not null default 'en',
  status         text not null default 'QUEUED',
  progress       text not null default '',
  output_path    text not null default '',
  bytes          bigint not null default 0,
  remote_job_id  text not null default '',
  error_kind     text not null default '',
  error_message  text not null default '',
  created_at     timestamptz not null default now(),
  updated_at     timestamptz not null default now()
);
`

const QCreateVideoRequestsQueueIndex = `--sql 4f1d8b2a-93c6-4e57-a0b8-2c6d7e9f1a34
create index if not exists video_requests_queue_idx
  on video_requests (status, created_at);
`

const QCreatePreferences = `--sql a7e2c94b-1d35-4f68-8b0c-5e9d3f2a7c61
create table if not exists preferences (
  key         text primary key,
  value       text not null,
  updated_at  timestamptz not null default now()
);
`

// Schema lists the bootstrap statements in execution order.
var Schema = []string{
	QCreateVideoRequests,
	QCreateVideoRequestsQueueIndex,
	QCreatePreferences,
}
