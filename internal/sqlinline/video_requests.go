package sqlinline

const QEnqueueVideoRequest = `--sql 3b9e7d21-6a4c-4f0e-8d52-1c7b9a0e4f83
insert into video_requests(
  id,
  prompt,
  width,
  height,
  seconds,
  model,
  locale,
  status,
  progress,
  created_at,
  updated_at
) values (
  $1::uuid,
  $2::text,
  $3::int,
  $4::int,
  $5::int,
  $6::text,
  $7::text,
  'QUEUED',
  'Queued',
  now(),
  now()
)
returning created_at;
`

const QClaimVideoRequest = `--sql 8d2f6c10-7e4b-4a93-b5d1-9f0c3e6a2b47
with next_request as (
    select id
    from video_requests
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update video_requests
    set status = 'RUNNING', progress = 'Initializing video generation...', updated_at = now()
    where id in (select id from next_request)
    returning id, prompt, width, height, seconds, model, locale, status, progress,
              output_path, bytes, remote_job_id, error_kind, error_message, created_at, updated_at
)
select * from updated;
`

const QUpdateVideoRequestProgress = `--sql 5c0a9e3d-2f71-4b86-a4e9-7d3b1c8f6e02
update video_requests
set progress = $2::text, updated_at = now()
where id = $1::uuid and status = 'RUNNING';
`

const QMarkVideoRequestSucceeded = `--sql e4b17a6f-0c29-4d5e-9a83-6f2d8b1c7e95
update video_requests
set status = 'SUCCEEDED',
    progress = $2::text,
    output_path = $3::text,
    bytes = $4::bigint,
    remote_job_id = $5::text,
    error_kind = '',
    error_message = '',
    updated_at = now()
where id = $1::uuid;
`

const QMarkVideoRequestFailed = `--sql 9a6c2e8b-4d17-4f30-b2e5-0b8f7d3a1c69
update video_requests
set status = 'FAILED',
    progress = $2::text,
    error_kind = $3::text,
    error_message = $4::text,
    updated_at = now()
where id = $1::uuid;
`

const QRequeueRunningVideoRequests = `--sql 2e8f4a6c-b3d9-4c71-8e05-a6d1f9c2b378
update video_requests
set status = 'QUEUED', progress = 'Queued', updated_at = now()
where status = 'RUNNING';
`

const QSelectVideoRequest = `--sql 71d3b5e9-8c0a-4e26-9f4b-3a7e2d6c1b80
select id, prompt, width, height, seconds, model, locale, status, progress,
       output_path, bytes, remote_job_id, error_kind, error_message, created_at, updated_at
from video_requests
where id = $1::uuid
limit 1;
`

const QListVideoRequests = `--sql c5f0e8a2-3b6d-4197-a8c4-e2b9d7f05a13
select id, prompt, width, height, seconds, model, locale, status, progress,
       output_path, bytes, remote_job_id, error_kind, error_message, created_at, updated_at
from video_requests
order by created_at desc
limit $1::int offset $2::int;
`
