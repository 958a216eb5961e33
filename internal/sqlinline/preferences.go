package sqlinline

const QSelectPreference = `--sql 6b2d9f47-a1e3-4c85-9d0b-7e4f2a8c3d16
select value
from preferences
where key = $1::text
limit 1;
`

const QUpsertPreference = `--sql d8a4c1e6-5f92-4b3a-8e7d-0c6b9f2e4a57
insert into preferences (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`

const QDeletePreference = `--sql 1f7e3c9a-d2b6-4a08-b5e1-8c4d0a6f2b93
delete from preferences
where key = $1::text;
`

const QListPreferences = `--sql b0c5e2d8-7a41-4f96-a3b7-d9e1f6c8a024
select key, value
from preferences
order by key asc;
`
